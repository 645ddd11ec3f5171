package driver

import "fmt"

// Driver is a real Formula 1 driver from the season catalog.
// Catalog rows are reference data owned by the results provider sync;
// the market core only reads them.
type Driver struct {
	ID            int64
	Code          string
	FirstName     string
	LastName      string
	CountryCode   string
	ConstructorID int64
}

func (d Driver) FullName() string {
	if d.FirstName == "" {
		return d.LastName
	}
	return d.FirstName + " " + d.LastName
}

func (d Driver) Validate() error {
	if d.ID <= 0 {
		return fmt.Errorf("driver id is required")
	}
	if d.LastName == "" {
		return fmt.Errorf("driver last name is required")
	}

	return nil
}
