package salla

import "context"

// ---------------------------------------------------------------------------
// Customer
// ---------------------------------------------------------------------------

// Customer is a local buyer account created or matched during order pull.
type Customer struct {
	// ID is the local natural key.
	ID string
	// FirstName and LastName as reported by the platform.
	FirstName string
	LastName  string
	// Mobile in international form, the primary matching key after the
	// external link.
	Mobile string
	Email  string
	// City and Country from the platform profile.
	City    string
	Country string
	// CompanyName, TaxID and CommercialRegister are extracted from order
	// option answers when present.
	CompanyName        string
	TaxID              string
	CommercialRegister string
}

// FullName joins the name parts, tolerating either being empty.
func (c *Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// CustomerRepository reads and writes local customers.
type CustomerRepository interface {
	ByID(ctx context.Context, id string) (*Customer, error)
	// ByMobile returns nil, nil when no customer has the number.
	ByMobile(ctx context.Context, mobile string) (*Customer, error)
	Save(ctx context.Context, c *Customer) error
}
