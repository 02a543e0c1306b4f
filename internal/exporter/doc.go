// Package exporter writes sector data out of the dashboard.
//
// CSVWriter writes the long (company, metric, value) form with a UTF-8 BOM,
// either to a response or to a file. WriteTableXLSX writes the data table as a
// workbook with display headers. WriteChartPNG renders the same grouped bar
// series as the interactive figure with gonum/plot.
package exporter
