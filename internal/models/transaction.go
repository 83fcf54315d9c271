package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the ledger's "Type" column.
type TransactionType string

const (
	TxTypeCardPayment TransactionType = "Card Payment"
	TxTypeTransfer    TransactionType = "Transfer"
	TxTypeTopup       TransactionType = "Topup"
	TxTypeFee         TransactionType = "Fee"
	TxTypeReward      TransactionType = "Reward"
	TxTypeInterest    TransactionType = "Interest"
	TxTypeCardRefund  TransactionType = "Card Refund"
	TxTypeExchange    TransactionType = "Exchange"
)

// Product is the account product a transaction is booked on.
type Product string

const (
	ProductCurrent Product = "Current"
	ProductSavings Product = "Savings"
	ProductDeposit Product = "Deposit"
)

// Merchant categories.
const (
	CategoryFood          = "Food & Dining"
	CategoryTransport     = "Transportation"
	CategoryUtilities     = "Utilities & Bills"
	CategoryShopping      = "Shopping & Retail"
	CategoryEntertainment = "Entertainment & Recreation"
	CategoryEducation     = "Education"
	CategoryPersonalCare  = "Personal Care & Services"
	CategoryTransfers     = "Transfers & Payments"
	CategoryIncome        = "Income & Deposits"
	CategoryFees          = "Fees & Charges"
	CategoryFinancial     = "Financial Services"
	CategoryOther         = "Other"
)

// EventKind says why a row exists: a pinned income date or a random one.
type EventKind int

const (
	EventFree EventKind = iota
	EventMonthlyStipend
	EventLumpSum
)

func (k EventKind) String() string {
	switch k {
	case EventMonthlyStipend:
		return "stipend"
	case EventLumpSum:
		return "lump_sum"
	default:
		return "free"
	}
}

// Forced reports whether the date was pinned by the schedule.
func (k EventKind) Forced() bool {
	return k != EventFree
}

// CSVHeaders is the fixed output column order.
var CSVHeaders = []string{
	"Type", "Product", "Amount", "Balance",
	"Year", "Month", "Day", "Weekday", "Hour",
	"Amount_Abs", "Description_Anon", "Merchant_Category",
	"Country", "City",
}

// Transaction is one ledger row.
type Transaction struct {
	Type     TransactionType
	Product  Product
	Amount   decimal.Decimal
	Balance  decimal.Decimal
	Date     time.Time
	Hour     int
	Merchant string
	Category string
	Country  string
	City     string

	// Kind is kept in memory for summaries and checks; it is not written.
	Kind EventKind
}

// AmountAbs is |Amount|.
func (t *Transaction) AmountAbs() decimal.Decimal {
	return t.Amount.Abs()
}

// Weekday is the full English day name of Date.
func (t *Transaction) Weekday() string {
	return t.Date.Weekday().String()
}

// ToCSVRow renders the row in CSVHeaders order.
func (t *Transaction) ToCSVRow() []string {
	return []string{
		string(t.Type),
		string(t.Product),
		t.Amount.StringFixed(2),
		t.Balance.StringFixed(2),
		strconv.Itoa(t.Date.Year()),
		strconv.Itoa(int(t.Date.Month())),
		strconv.Itoa(t.Date.Day()),
		t.Weekday(),
		strconv.Itoa(t.Hour),
		t.AmountAbs().StringFixed(2),
		t.Merchant,
		t.Category,
		t.Country,
		t.City,
	}
}
