// Package shared holds helpers used across the solarcli packages that do not
// belong to any single domain layer.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and builders for small measurement CSV fixtures:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.WriteMeasurementCSV(t, t.TempDir(), "benin.csv",
//	        testutil.NewMeasurementFixture(24).Build())
//	    ...
//	}
package shared
