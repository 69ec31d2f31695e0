// Package export renders lattice snapshots and measured series as SVG.
package export
