package order

import "furnimart-be/internal/utils"

// transitionRule gates one edge of the order state machine by actor role.
type transitionRule struct {
	from  OrderStatus
	to    OrderStatus
	actor string
}

// The full transition table. Any edge not listed is rejected.
var transitions = []transitionRule{
	{StatusSubmitted, StatusInTransit, utils.RoleStaff},
	{StatusInTransit, StatusCompleted, utils.RoleCourier},
	{StatusInTransit, StatusCancelled, utils.RoleCourier},
	{StatusSubmitted, StatusCancelled, utils.RoleCustomer},
	{StatusSubmitted, StatusCancelled, utils.RoleStaff},
}

// CanTransition reports whether actor may move an order from one status
// to another.
func CanTransition(from, to OrderStatus, actor string) bool {
	for _, t := range transitions {
		if t.from == from && t.to == to && t.actor == actor {
			return true
		}
	}
	return false
}

func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusSubmitted, StatusInTransit, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodCOD, MethodMoMo, MethodZaloPay:
		return true
	}
	return false
}
