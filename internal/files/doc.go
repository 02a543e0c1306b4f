// Package files locates sector spreadsheets on disk.
//
// A data directory holds one file per sector; the sector takes the file's
// base name, so "Banques.xlsx" yields the sector "Banques". Only the top
// level of the directory is scanned.
package files
