package protocol

// requiredParams defines the strict per-variant parameter sets of the
// intent tagged union.
var requiredParams = map[string][]string{
	ServiceFlightBooking:   {"from", "to", "date"},
	ServiceHotelBooking:    {"city", "checkIn", "checkOut"},
	ServiceWeatherForecast: {"location"},
}

// KnownServiceType reports whether the service type is part of the
// protocol's intent union.
func KnownServiceType(serviceType string) bool {
	_, ok := requiredParams[serviceType]
	return ok
}

// Validate checks the intent against its service type variant.
// Returns a ValidationError describing the first problem found.
func (in *Intent) Validate() error {
	if in.TransactionID == "" {
		return &ValidationError{Field: "transactionId", Msg: "must not be empty"}
	}
	if in.RequesterID == "" {
		return &ValidationError{Field: "requesterId", Msg: "must not be empty"}
	}
	if in.ServiceType == "" {
		return &ValidationError{Field: "serviceType", Msg: "must not be empty"}
	}

	required, ok := requiredParams[in.ServiceType]
	if !ok {
		return &ValidationError{Field: "serviceType", Msg: "unknown service type " + in.ServiceType}
	}
	for _, key := range required {
		if in.Params[key] == "" {
			return &ValidationError{Field: "params." + key, Msg: "required for " + in.ServiceType}
		}
	}

	if in.Constraints.MaxPrice != nil && *in.Constraints.MaxPrice < 0 {
		return &ValidationError{Field: "constraints.maxPrice", Msg: "must not be negative"}
	}
	if c := in.Constraints.Currency; c != "" && len(c) != 3 {
		return &ValidationError{Field: "constraints.currency", Msg: "must be a 3-letter code"}
	}
	return nil
}

// Validate checks the commit request payload.
func (cr *CommitRequest) Validate() error {
	if cr.TransactionID == "" {
		return &ValidationError{Field: "transactionId", Msg: "must not be empty"}
	}
	if cr.OfferID == "" {
		return &ValidationError{Field: "offerId", Msg: "must not be empty"}
	}
	return nil
}
