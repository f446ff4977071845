// Package sqlite contains the SQLite repository for calibrated marker
// weights.
//
// WeightTableStore implements mocap.WeightTable over the weight_entries
// table, and records calibration runs in calibration_runs. Schema lives in
// internal/db migrations; this package only reads and writes rows.
package sqlite
