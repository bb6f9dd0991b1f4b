// Package app wires the data API: configuration, logging, OpenTelemetry,
// the dataset service and the chi router with its middleware chain.
//
// # Initialization Flow
//
//	1. Resolve paths from the configuration and create the output directories
//	2. Initialize OpenTelemetry and the pipeline metrics
//	3. Build the dataset and health services
//	4. Set up the router and the HTTP server
//
// # Middleware
//
// Every API route runs through, in order:
//
//	RequestID → RealIP → OTel → StructuredLogger → Recoverer →
//	SecurityHeaders → CORS → RateLimiter (when enabled)
//
// /metrics sits outside that group so scrapes are neither rate limited nor
// counted as API traffic.
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Run handles SIGINT and SIGTERM, drains in-flight requests within the
// configured shutdown timeout and flushes the telemetry providers. The package
// never calls os.Exit; main decides the exit code.
package app
