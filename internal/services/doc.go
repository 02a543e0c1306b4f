// Package services holds the business layer between HTTP handlers and the
// sector data.
//
// SectorService answers sector selections, summaries and exports on top of a
// SectorCatalog and a SectorTransformer, recording metrics and spans for each
// call. HealthService reports liveness, readiness (sectors loaded, data
// directory reachable) and build information.
package services
