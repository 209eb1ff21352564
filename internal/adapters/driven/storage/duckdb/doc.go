// Package duckdb implements driven.AnalyticalStore on an embedded DuckDB file.
//
// The raw table (datos_raw) is rebuilt from CSV with read_csv_auto, the clean
// table (datos_clean) is bulk loaded through an appender, and the columnar
// snapshot is exported with COPY ... (FORMAT PARQUET).
//
// Every method opens the database and closes it before returning, so other
// processes can use the file between pipeline stages.
package duckdb
