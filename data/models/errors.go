package models

import "errors"

// ErrSymbolNotFound is returned by a price source when it has no series for a symbol,
// callers drop the symbol instead of failing the run
var ErrSymbolNotFound = errors.New("symbol not found")
