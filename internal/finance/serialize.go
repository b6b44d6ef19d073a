package finance

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Storage hands back DECIMAL columns as decimal.Decimal; everything that
// leaves the service carries plain float64 money fields instead.

func SerializeAccount(a Account) AccountPayload {
	return AccountPayload{
		ID:        a.ID,
		Name:      a.Name,
		Type:      string(a.Type),
		Balance:   a.Balance.InexactFloat64(),
		IsDefault: a.IsDefault,
		CreatedAt: a.CreatedAt,
	}
}

func SerializeAccountWithCount(a AccountWithCount) AccountPayload {
	payload := SerializeAccount(a.Account)
	payload.TransactionCount = a.TransactionCount
	return payload
}

func SerializeTransaction(t Transaction) TransactionPayload {
	return TransactionPayload{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Type:        string(t.Type),
		Amount:      t.Amount.InexactFloat64(),
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date,
		IsRecurring: t.IsRecurring,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
	}
}

func SerializeTransactionWithAccount(t TransactionWithAccount) TransactionPayload {
	payload := SerializeTransaction(t.Transaction)
	payload.AccountName = t.AccountName
	payload.AccountType = string(t.AccountType)
	return payload
}

// moneyKeys are the record fields that may carry decimal values.
var moneyKeys = map[string]bool{"balance": true, "amount": true}

// SerializeRecord returns a shallow copy of a loosely-typed record with any
// decimal-valued balance/amount fields converted to float64. Other fields
// pass through unchanged, the input map is not mutated, and applying the
// conversion twice yields the same result.
func SerializeRecord(record map[string]any) map[string]any {
	serialized := make(map[string]any, len(record))
	for key, value := range record {
		if !moneyKeys[key] {
			serialized[key] = value
			continue
		}
		switch v := value.(type) {
		case decimal.Decimal:
			serialized[key] = v.InexactFloat64()
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				serialized[key] = value
				continue
			}
			serialized[key] = f
		case int:
			serialized[key] = float64(v)
		case int64:
			serialized[key] = float64(v)
		default:
			serialized[key] = value
		}
	}
	return serialized
}
