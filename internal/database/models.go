package database

import "time"

// Symbol is one entry of the exchange symbol lookup table, mapping a TWSE
// stock code to its listed company name and the provider-qualified symbol
// ("2330" → "台積電", "2330.TW"). The whole table is replaced atomically on
// each maintenance refresh.
type Symbol struct {
	Code      string    `db:"code"`
	Name      string    `db:"name"`
	Symbol    string    `db:"symbol"`
	UpdatedAt time.Time `db:"updated_at"`
}
