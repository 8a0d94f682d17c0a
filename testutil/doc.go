/*
Package testutil provides test fixtures for the ATP marketplace packages.

It contains generators for the protocol's core objects, customizable
through functional options so tests state only what they care about:

	// A valid flight intent with a budget
	intent := testutil.NewTestIntent(testutil.WithMaxPrice(500))

	// A supplier selling flights at a specific price
	s := testutil.NewTestSupplier(
	    testutil.WithQuote(protocol.ServiceFlightBooking, 475, "EUR"),
	)

	// Key material for signing tests
	pub, priv := testutil.GenerateTestKeyPair()
*/
package testutil
