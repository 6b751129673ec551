// Package export renders extracted records for people and spreadsheets.
//
// Records are handled as raw JSON text rather than decoded values so the key
// order and number spelling the model produced survive into the output.
//
//	report, _ := p.Run(ctx, src)
//	export.WriteCSV(os.Stdout, report.RecordsJSON())
package export
