package model

import (
	"fmt"
	"strings"
	"time"
)

// ChargeKind identifies which charge a rule configures.
type ChargeKind string

const (
	KindCommission ChargeKind = "COMMISSION"
	KindSpread     ChargeKind = "SPREAD"
	KindSwap       ChargeKind = "SWAP"
)

// Segment is a trading segment grouping instruments.
type Segment string

const (
	SegmentForex   Segment = "FOREX"
	SegmentMetals  Segment = "METALS"
	SegmentCrypto  Segment = "CRYPTO"
	SegmentIndices Segment = "INDICES"
)

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// EventType distinguishes position open from position close.
type EventType string

const (
	EventOpen  EventType = "OPEN"
	EventClose EventType = "CLOSE"
)

// CommissionType selects how a commission rule is applied.
type CommissionType string

const (
	CommissionPerLot     CommissionType = "PER_LOT"
	CommissionPerTrade   CommissionType = "PER_TRADE"
	CommissionPercentage CommissionType = "PERCENTAGE"
)

// SpreadType selects how a spread rule is applied.
type SpreadType string

const (
	SpreadFixed      SpreadType = "FIXED"
	SpreadPercentage SpreadType = "PERCENTAGE"
)

// RuleScope is the set of optional dimensions a charge rule restricts itself
// to. A nil dimension is a wildcard. All dimensions unset means the rule
// applies globally.
type RuleScope struct {
	AccountTypeID    *string
	Segment          *Segment
	InstrumentSymbol *string
	UserID           *string
}

// IsGlobal reports whether no dimension is set.
func (s RuleScope) IsGlobal() bool {
	return s.AccountTypeID == nil && s.Segment == nil && s.InstrumentSymbol == nil && s.UserID == nil
}

// Key returns a normalized identity for the scope, used to enforce the
// one-rule-per-(kind, scope) invariant.
func (s RuleScope) Key() string {
	parts := make([]string, 4)
	if s.AccountTypeID != nil {
		parts[0] = "a=" + *s.AccountTypeID
	}
	if s.Segment != nil {
		parts[1] = "g=" + string(*s.Segment)
	}
	if s.InstrumentSymbol != nil {
		parts[2] = "i=" + *s.InstrumentSymbol
	}
	if s.UserID != nil {
		parts[3] = "u=" + *s.UserID
	}
	return strings.Join(parts, "|")
}

// String renders the scope for logs and CLI output.
func (s RuleScope) String() string {
	if s.IsGlobal() {
		return "global"
	}
	var parts []string
	if s.UserID != nil {
		parts = append(parts, "user="+*s.UserID)
	}
	if s.InstrumentSymbol != nil {
		parts = append(parts, "instrument="+*s.InstrumentSymbol)
	}
	if s.Segment != nil {
		parts = append(parts, "segment="+string(*s.Segment))
	}
	if s.AccountTypeID != nil {
		parts = append(parts, "accountType="+*s.AccountTypeID)
	}
	return strings.Join(parts, ",")
}

// ChargeRule is a single administrator-configured charge override. The
// kind-specific payload fields are only meaningful for their kind: Value and
// the charge-on flags for COMMISSION, SpreadType and Value for SPREAD,
// SwapLong/SwapShort for SWAP.
type ChargeRule struct {
	ID    string
	Kind  ChargeKind
	Scope RuleScope

	CommissionType CommissionType
	Value          float64
	ChargeOnBuy    bool
	ChargeOnSell   bool
	ChargeOnClose  bool

	SpreadType SpreadType

	SwapLong  float64
	SwapShort float64

	UpdatedAt time.Time
}

// Validate checks the rule's kind-specific payload. Commission and spread
// magnitudes must be non-negative; swap values may be negative (debit).
func (r ChargeRule) Validate() error {
	switch r.Kind {
	case KindCommission:
		switch r.CommissionType {
		case CommissionPerLot, CommissionPerTrade, CommissionPercentage:
		default:
			return fmt.Errorf("commission type %q: %w", r.CommissionType, ErrInvalidRule)
		}
		if r.Value < 0 {
			return fmt.Errorf("commission value %v must be >= 0: %w", r.Value, ErrInvalidRule)
		}
	case KindSpread:
		switch r.SpreadType {
		case SpreadFixed, SpreadPercentage:
		default:
			return fmt.Errorf("spread type %q: %w", r.SpreadType, ErrInvalidRule)
		}
		if r.Value < 0 {
			return fmt.Errorf("spread value %v must be >= 0: %w", r.Value, ErrInvalidRule)
		}
	case KindSwap:
		// Signed values are valid as-is.
	default:
		return fmt.Errorf("charge kind %q: %w", r.Kind, ErrInvalidRule)
	}
	if r.Scope.Segment != nil {
		switch *r.Scope.Segment {
		case SegmentForex, SegmentMetals, SegmentCrypto, SegmentIndices:
		default:
			return fmt.Errorf("segment %q: %w", *r.Scope.Segment, ErrInvalidRule)
		}
	}
	return nil
}

// CurrencyRate is a currency's base market rate against USD plus the
// configured markup. The effective conversion rate is derived, never stored:
// rateToUSD * (1 + markupPercent/100).
type CurrencyRate struct {
	Code          string
	Symbol        string
	RateToUSD     float64
	MarkupPercent float64
	IsActive      bool
	UpdatedAt     time.Time
}

// Validate checks the rate record invariants.
func (c CurrencyRate) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("currency code is required: %w", ErrInvalidRule)
	}
	if c.RateToUSD <= 0 {
		return fmt.Errorf("currency %s: rate %v must be positive: %w", c.Code, c.RateToUSD, ErrInvalidRateValue)
	}
	return nil
}

// TradeContext carries the attributes of a trade or deposit event that charge
// resolution runs against. It is ephemeral and never persisted by the engine.
type TradeContext struct {
	UserID           string
	AccountTypeID    string
	Segment          Segment
	InstrumentSymbol string
	Side             Side
	Event            EventType
	Lots             float64
	NotionalValue    float64
}
