// Package dataprocessing loads sector ratio files and turns a sector selection
// into chart and table data.
//
// Loading: LoadStore discovers every .xlsx/.csv file in the data directory,
// parses them concurrently with ParseSectorFile and checks that all sectors
// share one column set and that the LabelMap covers it.
//
// Selection: Transformer.Transform normalizes metric cells to percentages with
// two decimals, melts the wide table to (company, metric, value) records,
// relabels metrics with their display titles and builds a grouped bar Figure
// with one trace per metric. The same values feed the data table.
//
//	store, err := dataprocessing.LoadStore(ctx, dataprocessing.LoadOptions{Dir: "data", Workers: 4})
//	if err != nil {
//	    return err
//	}
//	t := dataprocessing.NewTransformer(store, nil, dataprocessing.NewNormalizer(dataprocessing.ConventionPercent))
//	view, err := t.Transform(store.Default())
package dataprocessing
