package models

import "encoding/json"

// -----------------------------------------------------------------------------
// Upstream payload shapes (deals aggregator wire contract)
// -----------------------------------------------------------------------------

type MShop struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MPriceBlock is the aggregator's structured price object. AmountInt is the
// minor-unit-less integer and preferred over Amount when both are present.
type MPriceBlock struct {
	Amount    *float64 `json:"amount"`
	AmountInt *int     `json:"amountInt"`
	Currency  string   `json:"currency"`
}

// Value resolves the block to yen, nil when neither field is present.
func (p *MPriceBlock) Value() *int {
	if p == nil {
		return nil
	}
	if p.AmountInt != nil {
		v := *p.AmountInt
		return &v
	}
	if p.Amount != nil {
		v := int(*p.Amount)
		return &v
	}
	return nil
}

// -----------------------------------------------------------------------------

// MFlexPrice accepts both upstream price encodings: a bare number and a
// structured {amountInt|amount} object. Missing stays nil, never zero.
type MFlexPrice struct {
	value *int
}

func (p *MFlexPrice) UnmarshalJSON(data []byte) error {
	p.value = nil
	if string(data) == "null" {
		return nil
	}

	var bare float64
	if err := json.Unmarshal(data, &bare); err == nil {
		v := int(bare)
		p.value = &v
		return nil
	}

	var block MPriceBlock
	if err := json.Unmarshal(data, &block); err != nil {
		return err
	}
	p.value = block.Value()
	return nil
}

func (p *MFlexPrice) Value() *int {
	if p == nil || p.value == nil {
		return nil
	}
	v := *p.value
	return &v
}

// FlexPriceOf builds a MFlexPrice holding a known value (test and demo use).
func FlexPriceOf(v int) MFlexPrice {
	return MFlexPrice{value: &v}
}

// -----------------------------------------------------------------------------
// Current prices (POST /games/prices/v3)
// -----------------------------------------------------------------------------

type MPricesPayload struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Deals []MDeal `json:"deals"`
}

type MDeal struct {
	Shop      MShop        `json:"shop"`
	Price     *MPriceBlock `json:"price"`
	Regular   *MPriceBlock `json:"regular"`
	Cut       int          `json:"cut"`
	URL       string       `json:"url"`
	Timestamp string       `json:"timestamp"`
}

// -----------------------------------------------------------------------------
// Per-store historical lows (POST /games/storelow/v2)
// -----------------------------------------------------------------------------

type MStoreLowPayload struct {
	ID   string      `json:"id"`
	Lows []MStoreLow `json:"lows"`
}

type MStoreLow struct {
	Shop     MShop      `json:"shop"`
	Price    MFlexPrice `json:"price"`
	Added    string     `json:"added"`
	Recorded string     `json:"recorded"`
}

// -----------------------------------------------------------------------------
// All-time overview (POST /games/overview/v2)
// -----------------------------------------------------------------------------

type MOverviewPayload struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Lowest  *MLowest  `json:"lowest"`
	Bundles []MBundle `json:"bundles"`
}

type MLowest struct {
	Price MFlexPrice `json:"price"`
	Shop  *MShop     `json:"shop"`
	Added string     `json:"added"`
}

type MBundle struct {
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Tiers []MTier `json:"tiers"`
}

type MTier struct {
	Price *MPriceBlock `json:"price"`
}
