// Package schema declares the warehouse tables of the pipeline as data:
// two staging tables that receive raw JSON records and the star schema
// (one fact table, four dimensions) populated from them.
//
// Column types are coarse; dialects decide the concrete SQL type. Distribution
// and sort keys are Redshift layout hints and carry no semantic meaning.
package schema
