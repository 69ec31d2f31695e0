// Package automation runs batches of lattice simulations without a terminal:
// β scans across a temperature range and scripted YAML scenarios that replay
// a sequence of parameter changes on one lattice.
package automation
