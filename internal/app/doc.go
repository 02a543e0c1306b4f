// Package app wires the sector dashboard together and runs its HTTP server.
//
// Startup order:
//
//  1. Load configuration (defaults, YAML file, .env, environment)
//  2. Initialize logging and OpenTelemetry
//  3. Read the label map and load every sector file from the data directory
//  4. Build the transformer and the sector and health services
//  5. Set up middleware, API routes and the dashboard page
//  6. Listen and serve until SIGINT or SIGTERM
//
// Sector data is read once. A missing directory, an unreadable file, a schema
// mismatch between sectors or a column without a label fails construction, so
// the server never starts with a partial catalog.
//
// Construction errors are returned to the caller; the package never calls os.Exit.
package app
