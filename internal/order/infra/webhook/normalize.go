package webhook

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dwikikusuma/boutique-storefront/internal/order/domain"
	"github.com/shopspring/decimal"
)

// Field aliases seen in sheet rows. Keys are compared after lowercasing and dropping
// underscores, spaces and dashes, so "OrderID", "orderId" and "order_id" are one key.
var (
	aliasOrderID   = []string{"orderid", "id", "timestamp"}
	aliasName      = []string{"name", "customername"}
	aliasPhone     = []string{"phone"}
	aliasLocation  = []string{"location"}
	aliasItems     = []string{"items"}
	aliasSubtotal  = []string{"subtotal"}
	aliasFee       = []string{"deliveryfee", "delivery"}
	aliasTotal     = []string{"total"}
	aliasStatus    = []string{"status"}
	aliasNotes     = []string{"notes"}
	aliasCreatedAt = []string{"createdat", "timestamp", "date"}

	aliasItemID    = []string{"id", "productid"}
	aliasItemName  = []string{"name"}
	aliasItemQty   = []string{"quantity", "qty"}
	aliasItemPrice = []string{"price"}
)

// Normalize maps a loosely shaped remote record onto an Order. Missing or malformed fields
// become zero values; it never fails.
func Normalize(raw map[string]any) domain.Order {
	rec := canonical(raw)

	o := domain.Order{
		OrderID:     asString(rec.get(aliasOrderID...)),
		Name:        asString(rec.get(aliasName...)),
		Phone:       asString(rec.get(aliasPhone...)),
		Location:    asString(rec.get(aliasLocation...)),
		Items:       asItems(rec.get(aliasItems...)),
		Subtotal:    asDecimal(rec.get(aliasSubtotal...)),
		DeliveryFee: asDecimal(rec.get(aliasFee...)),
		Total:       asDecimal(rec.get(aliasTotal...)),
		Status:      asString(rec.get(aliasStatus...)),
		Notes:       asString(rec.get(aliasNotes...)),
		CreatedAt:   asTime(rec.get(aliasCreatedAt...)),
	}
	if o.Status == "" {
		o.Status = domain.StatusNew
	}
	return o
}

type record map[string]any

// canonical folds raw keys that differ only in case or separators. When several spellings
// carry a value, the one starting lowercase wins, then the first in sorted order.
func canonical(raw map[string]any) record {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := startsLower(keys[i]), startsLower(keys[j])
		if li != lj {
			return li
		}
		return keys[i] < keys[j]
	})

	rec := make(record, len(raw))
	for _, k := range keys {
		v := raw[k]
		key := canonicalKey(k)
		if cur, dup := rec[key]; dup && (isBlank(v) || !isBlank(cur)) {
			continue
		}
		rec[key] = v
	}
	return rec
}

func startsLower(k string) bool {
	r, _ := utf8.DecodeRuneInString(k)
	return unicode.IsLower(r)
}

func canonicalKey(k string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ':
			return -1
		}
		return r
	}, strings.ToLower(k))
}

// get returns the first non-blank value among keys.
func (r record) get(keys ...string) any {
	for _, k := range keys {
		if v, ok := r[k]; ok && !isBlank(v) {
			return v
		}
	}
	return nil
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func asDecimal(v any) decimal.Decimal {
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(t)
	case int:
		return decimal.NewFromInt(int64(t))
	case string:
		s := strings.NewReplacer("Ksh", "", "KES", "", ",", "", " ", "").Replace(t)
		d, err := decimal.NewFromString(s)
		if err == nil {
			return d
		}
	}
	return decimal.Zero
}

func asInt(v any) int {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
		if f, err := t.Float64(); err == nil {
			return int(f)
		}
	case float64:
		return int(t)
	case int:
		return t
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return 0
}

func asTime(v any) time.Time {
	s := asString(v)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

// asItems accepts an array of objects or strings, or a string holding a JSON array. Any
// other string becomes a single named line.
func asItems(v any) []domain.OrderItem {
	switch t := v.(type) {
	case []any:
		items := make([]domain.OrderItem, 0, len(t))
		for _, el := range t {
			switch e := el.(type) {
			case map[string]any:
				rec := canonical(e)
				items = append(items, domain.OrderItem{
					ID:       asString(rec.get(aliasItemID...)),
					Name:     asString(rec.get(aliasItemName...)),
					Quantity: asInt(rec.get(aliasItemQty...)),
					Price:    asDecimal(rec.get(aliasItemPrice...)),
				})
			default:
				if name := asString(e); name != "" {
					items = append(items, domain.OrderItem{Name: name})
				}
			}
		}
		return items
	case string:
		s := strings.TrimSpace(t)
		if strings.HasPrefix(s, "[") {
			dec := json.NewDecoder(strings.NewReader(s))
			dec.UseNumber()
			var arr []any
			if err := dec.Decode(&arr); err == nil {
				return asItems(arr)
			}
		}
		return []domain.OrderItem{{Name: s}}
	}
	return []domain.OrderItem{}
}
