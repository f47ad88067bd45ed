package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/queryir"
	"github.com/roach88/insight/internal/schema"
)

// Group is a partition of filtered records sharing the same GROUP values.
//
// Groups are ephemeral: they exist only within one evaluation. Aggregates
// are attached to the group rather than written back onto the member
// records, so the dataset stays read-only.
type Group struct {
	// Key holds one value per GROUP field, in GROUP order. A nil entry means
	// the field was absent on every member.
	Key []ir.Value

	// Records are the members in dataset order. Never empty.
	Records []ir.Record

	// Aggregates maps apply keys to computed values. A missing entry means
	// the aggregate had no present input values.
	Aggregates map[string]ir.Value
}

// GroupRecords partitions records by the values of fields.
//
// Groups appear in first-occurrence order of their key tuples, and records
// keep their relative order inside each group, so concatenating the groups
// and restoring dataset order reconstructs the input.
func GroupRecords(records []ir.Record, fields []queryir.FieldRef, kind schema.Kind) []*Group {
	var groups []*Group
	index := make(map[string]*Group)

	for _, rec := range records {
		key := make([]ir.Value, len(fields))
		for i, ref := range fields {
			key[i] = fieldValue(rec, ref.Field, kind)
		}

		k := groupKey(key)
		g, ok := index[k]
		if !ok {
			g = &Group{Key: key, Aggregates: make(map[string]ir.Value)}
			index[k] = g
			groups = append(groups, g)
		}
		g.Records = append(g.Records, rec)
	}
	return groups
}

// groupKey encodes a key tuple as a string. Each component carries a type tag
// so the number 1 and the string "1" never collide, and is quoted so no
// string content can forge a component boundary.
func groupKey(values []ir.Value) string {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(strconv.Quote(valueKey(v)))
	}
	return b.String()
}

func valueKey(v ir.Value) string {
	switch val := v.(type) {
	case ir.Number:
		return "n:" + ir.FormatNumber(float64(val))
	case ir.String:
		return "s:" + string(val)
	default:
		return "-"
	}
}

// ApplyRules computes every rule once per group and stores the result under
// the rule's key in Group.Aggregates.
func ApplyRules(groups []*Group, rules []queryir.ApplyRule, kind schema.Kind) error {
	for _, g := range groups {
		for _, rule := range rules {
			v, err := aggregate(g.Records, rule, kind)
			if err != nil {
				return fmt.Errorf("apply %q: %w", rule.Key, err)
			}
			if v != nil {
				g.Aggregates[rule.Key] = v
			}
		}
	}
	return nil
}

// aggregate computes one rule over the members of a group. Absent values are
// skipped; if nothing is present the result is nil.
func aggregate(records []ir.Record, rule queryir.ApplyRule, kind schema.Kind) (ir.Value, error) {
	if rule.Token == queryir.TokenCount {
		return countDistinct(records, rule.Field.Field, kind), nil
	}

	var nums []float64
	for _, rec := range records {
		if n, ok := numericValue(rec, rule.Field.Field, kind); ok {
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		return nil, nil
	}

	switch rule.Token {
	case queryir.TokenMax:
		m := nums[0]
		for _, n := range nums[1:] {
			m = max(m, n)
		}
		return ir.Number(m), nil

	case queryir.TokenMin:
		m := nums[0]
		for _, n := range nums[1:] {
			m = min(m, n)
		}
		return ir.Number(m), nil

	case queryir.TokenSum:
		sum, err := decimalSum(nums)
		if err != nil {
			return nil, err
		}
		return roundedNumber(sum)

	case queryir.TokenAvg:
		sum, err := decimalSum(nums)
		if err != nil {
			return nil, err
		}
		avg := new(apd.Decimal)
		if _, err := decimalContext.Quo(avg, sum, apd.New(int64(len(nums)), 0)); err != nil {
			return nil, fmt.Errorf("average: %w", err)
		}
		return roundedNumber(avg)

	default:
		return nil, fmt.Errorf("unknown aggregate token %q", rule.Token)
	}
}

// countDistinct counts the distinct present values of f.
func countDistinct(records []ir.Record, f schema.Field, kind schema.Kind) ir.Value {
	seen := make(map[string]struct{})
	for _, rec := range records {
		v := fieldValue(rec, f, kind)
		if v == nil {
			continue
		}
		seen[valueKey(v)] = struct{}{}
	}
	return ir.Number(len(seen))
}

// decimalContext carries enough precision that adding a few thousand float64
// inputs is exact; only the final quantization rounds.
var decimalContext = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(34)
	c.Rounding = apd.RoundHalfUp
	return c
}()

// decimalSum adds the decimal representations of nums. Each input is
// converted through its shortest decimal form, so 1.005 enters as exactly
// 1.005 rather than its binary approximation.
func decimalSum(nums []float64) (*apd.Decimal, error) {
	sum := new(apd.Decimal)
	for _, n := range nums {
		d, err := new(apd.Decimal).SetFloat64(n)
		if err != nil {
			return nil, fmt.Errorf("convert %v: %w", n, err)
		}
		if _, err := decimalContext.Add(sum, sum, d); err != nil {
			return nil, fmt.Errorf("sum: %w", err)
		}
	}
	return sum, nil
}

// roundedNumber rounds d half away from zero to two fractional digits.
// Values already carrying at most two fractional digits pass through, so
// large magnitudes never exceed the quantization precision.
func roundedNumber(d *apd.Decimal) (ir.Value, error) {
	rounded := d
	if d.Exponent < -2 {
		c := decimalContext.WithPrecision(uint32(d.NumDigits()) + 1)
		rounded = new(apd.Decimal)
		if _, err := c.Quantize(rounded, d, -2); err != nil {
			return nil, fmt.Errorf("round: %w", err)
		}
	}
	f, err := rounded.Float64()
	if err != nil {
		return nil, fmt.Errorf("round: %w", err)
	}
	return ir.Number(f), nil
}
