package queries

import (
	"embed"
	"fmt"
)

// go:embed bakes the sql files into the binary at compile time
//
//go:embed select/*.sql
var Files embed.FS

type SelectQueries struct {
	ClosingPrices    string
	MetaDataBySymbol string
}

type QueryHelperStruct struct {
	Select SelectQueries
}

var QueryHelper = QueryHelperStruct{
	Select: SelectQueries{
		ClosingPrices:    "select/closing_prices.sql",
		MetaDataBySymbol: "select/meta_data_by_symbol.sql",
	},
}

func Get(path string) string {
	content, err := Files.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("error reading query file: %w", err))
	}

	return string(content)
}
