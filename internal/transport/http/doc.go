// Package http implements the JSON data API over the dataset service.
//
// Handlers stay thin: they validate path and query parameters, call the
// service and render the result with go-chi/render. Every failure goes through
// errors.ErrorHandler, which answers with RFC 7807 problem details:
//
//	NOT_FOUND               404
//	VALIDATION              400
//	SCHEMA, DATA_QUALITY    422
//	anything else           500
//
// Routes (mounted under /api):
//
//	GET /countries
//	GET /countries/{country}/summary?metric=GHI
//	GET /countries/{country}/hourly?fields=GHI,DNI,DHI
//	GET /countries/{country}/correlation?fields=...
//	GET /countries/{country}/outliers
//	GET /countries/{country}/cleaning-impact
//	GET /compare?metric=GHI
package http
