package domain

type Role string

const (
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
	RoleKasir Role = "KASIR"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleKasir:
		return true
	default:
		return false
	}
}

type ProductType string

const (
	ProductTypeSell ProductType = "SELL"
	ProductTypeRent ProductType = "RENT"
)

func (t ProductType) Valid() bool {
	return t == ProductTypeSell || t == ProductTypeRent
}

type CategoryKind string

const (
	CategoryKindProduct CategoryKind = "PRODUCT"
	CategoryKindMenu    CategoryKind = "MENU"
)

func (k CategoryKind) Valid() bool {
	return k == CategoryKindProduct || k == CategoryKindMenu
}

type TableStatus string

const (
	TableEmpty    TableStatus = "EMPTY"
	TableOccupied TableStatus = "OCCUPIED"
)

type CourtStatus string

const (
	CourtActive      CourtStatus = "ACTIVE"
	CourtMaintenance CourtStatus = "MAINTENANCE"
	CourtInactive    CourtStatus = "INACTIVE"
)

func (s CourtStatus) Valid() bool {
	switch s {
	case CourtActive, CourtMaintenance, CourtInactive:
		return true
	default:
		return false
	}
}

type TransactionType string

const (
	TransactionPOS     TransactionType = "POS"
	TransactionRental  TransactionType = "RENTAL"
	TransactionBooking TransactionType = "BOOKING"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionPaid      TransactionStatus = "PAID"
	TransactionCancelled TransactionStatus = "CANCELLED"
	TransactionCompleted TransactionStatus = "COMPLETED"
)

var transactionNext = map[TransactionStatus]map[TransactionStatus]bool{
	TransactionPending:   {TransactionPaid: true, TransactionCancelled: true, TransactionCompleted: true},
	TransactionPaid:      {TransactionCancelled: true, TransactionCompleted: true},
	TransactionCancelled: {},
	TransactionCompleted: {},
}

// CanTransition reports whether a transaction may move from one status to another.
func (s TransactionStatus) CanTransition(to TransactionStatus) bool {
	return transactionNext[s][to]
}

type ItemType string

const (
	ItemProduct ItemType = "PRODUCT"
	ItemMenu    ItemType = "MENU"
	ItemBooking ItemType = "BOOKING"
)

type RecordStatus string

const (
	RecordActive    RecordStatus = "ACTIVE"
	RecordReturned  RecordStatus = "RETURNED"
	RecordCancelled RecordStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "UNPAID"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// Completing a booking is unconditional apart from CANCELLED, so COMPLETED may
// be completed again and still be cancelled.
var bookingNext = map[BookingStatus]map[BookingStatus]bool{
	BookingPending:   {BookingConfirmed: true, BookingCancelled: true, BookingCompleted: true},
	BookingConfirmed: {BookingCancelled: true, BookingCompleted: true},
	BookingCompleted: {BookingCancelled: true, BookingCompleted: true},
	BookingCancelled: {},
}

func (s BookingStatus) CanTransition(to BookingStatus) bool {
	return bookingNext[s][to]
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderApproved  OrderStatus = "APPROVED"
	OrderPreparing OrderStatus = "PREPARING"
	OrderServed    OrderStatus = "SERVED"
	OrderRejected  OrderStatus = "REJECTED"
	OrderCancelled OrderStatus = "CANCELLED"
)

var orderNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:   {OrderApproved: true, OrderRejected: true, OrderCancelled: true},
	OrderApproved:  {OrderPreparing: true, OrderCancelled: true},
	OrderPreparing: {OrderServed: true, OrderCancelled: true},
	OrderServed:    {},
	OrderRejected:  {},
	OrderCancelled: {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderNext[s]
	return ok
}

// CanTransition reports whether an order request may move from one status to another.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	return orderNext[s][to]
}

func (s OrderStatus) Terminal() bool {
	next, ok := orderNext[s]
	return ok && len(next) == 0
}

type AdjustmentType string

const (
	AdjustAdd        AdjustmentType = "ADD"
	AdjustRemove     AdjustmentType = "REMOVE"
	AdjustCorrection AdjustmentType = "CORRECTION"
)

func (t AdjustmentType) Valid() bool {
	switch t {
	case AdjustAdd, AdjustRemove, AdjustCorrection:
		return true
	default:
		return false
	}
}

const (
	NotifyTransactionCreated   = "TRANSACTION_CREATED"
	NotifyTransactionPaid      = "TRANSACTION_PAID"
	NotifyTransactionCancelled = "TRANSACTION_CANCELLED"
	NotifyRentalReturned       = "RENTAL_RETURNED"
	NotifyBookingCreated       = "BOOKING_CREATED"
	NotifyBookingCancelled     = "BOOKING_CANCELLED"
	NotifyOrderCreated         = "ORDER_REQUEST_CREATED"
	NotifyOrderUpdated         = "ORDER_REQUEST_UPDATED"
	NotifyOrderServed          = "ORDER_REQUEST_SERVED"
	NotifyStockAdjusted        = "STOCK_ADJUSTED"
)
