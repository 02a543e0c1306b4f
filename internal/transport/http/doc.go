// Package http holds the dashboard's HTTP handlers.
//
// Handlers stay thin: they decode and validate the request, call a service and
// render the result with chi/render. Every failure goes through
// apierrors.ErrorHandler so clients always receive RFC 7807 problem details.
//
// Routes (mounted under /api unless noted):
//
//	GET  /                              dashboard page (DashboardHandler)
//	POST /dashboard/update              selection -> figure + table
//	GET  /sectors                       sector names and default
//	GET  /sectors/{sector}              sector view
//	GET  /sectors/{sector}/summary      per-metric statistics
//	GET  /sectors/{sector}/chart.png    chart image
//	GET  /sectors/{sector}/export.csv   long-form CSV
//	GET  /sectors/{sector}/export.xlsx  table workbook
//	POST /logs                          browser-side error reports
//	GET  /health, /health/ready, /health/live, /version
package http
