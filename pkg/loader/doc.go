/*
Package loader reads the HSN reference table from a tabular file.

The format is chosen by file extension:

  - .xlsx, .xlsm: Excel workbook (first sheet unless WithSheet is given)
  - .csv, .tsv: delimited text with a header row
  - .db, .sqlite, .sqlite3: SQLite database table

Load never fails: any problem degrades to an empty table and a log line, which
the validator reports as DATASTORE_UNAVAILABLE. LoadFile is the strict variant
that returns the cause.
*/
package loader
