package customer

// Customer is a row of the `customers` table. The reserved guest customer
// stands in for anonymous sales.
type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Phone     string
}

func (c Customer) DisplayName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}
