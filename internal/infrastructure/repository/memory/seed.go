package memory

import (
	"github.com/davidriba/f1-fantasy-league/internal/domain/driver"
	"github.com/davidriba/f1-fantasy-league/internal/domain/user"
)

const (
	ConstructorMcLaren     = 1
	ConstructorFerrari     = 2
	ConstructorRedBull     = 3
	ConstructorMercedes    = 4
	ConstructorAstonMartin = 5
	ConstructorAlpine      = 6
	ConstructorWilliams    = 7
	ConstructorRacingBulls = 8
	ConstructorSauber      = 9
	ConstructorHaas        = 10
)

// SeedDrivers returns the 2025 grid for local mode.
func SeedDrivers() []driver.Driver {
	return []driver.Driver{
		{ID: 1, Code: "PIA", FirstName: "Oscar", LastName: "Piastri", CountryCode: "AU", ConstructorID: ConstructorMcLaren},
		{ID: 2, Code: "NOR", FirstName: "Lando", LastName: "Norris", CountryCode: "GB", ConstructorID: ConstructorMcLaren},
		{ID: 3, Code: "VER", FirstName: "Max", LastName: "Verstappen", CountryCode: "NL", ConstructorID: ConstructorRedBull},
		{ID: 4, Code: "RUS", FirstName: "George", LastName: "Russell", CountryCode: "GB", ConstructorID: ConstructorMercedes},
		{ID: 5, Code: "LEC", FirstName: "Charles", LastName: "Leclerc", CountryCode: "MC", ConstructorID: ConstructorFerrari},
		{ID: 6, Code: "HAM", FirstName: "Lewis", LastName: "Hamilton", CountryCode: "GB", ConstructorID: ConstructorFerrari},
		{ID: 7, Code: "ANT", FirstName: "Andrea Kimi", LastName: "Antonelli", CountryCode: "IT", ConstructorID: ConstructorMercedes},
		{ID: 8, Code: "ALB", FirstName: "Alexander", LastName: "Albon", CountryCode: "TH", ConstructorID: ConstructorWilliams},
		{ID: 9, Code: "HUL", FirstName: "Nico", LastName: "Hulkenberg", CountryCode: "DE", ConstructorID: ConstructorSauber},
		{ID: 10, Code: "OCO", FirstName: "Esteban", LastName: "Ocon", CountryCode: "FR", ConstructorID: ConstructorHaas},
		{ID: 11, Code: "ALO", FirstName: "Fernando", LastName: "Alonso", CountryCode: "ES", ConstructorID: ConstructorAstonMartin},
		{ID: 12, Code: "STR", FirstName: "Lance", LastName: "Stroll", CountryCode: "CA", ConstructorID: ConstructorAstonMartin},
		{ID: 13, Code: "HAD", FirstName: "Isack", LastName: "Hadjar", CountryCode: "FR", ConstructorID: ConstructorRacingBulls},
		{ID: 14, Code: "GAS", FirstName: "Pierre", LastName: "Gasly", CountryCode: "FR", ConstructorID: ConstructorAlpine},
		{ID: 15, Code: "SAI", FirstName: "Carlos", LastName: "Sainz", CountryCode: "ES", ConstructorID: ConstructorWilliams},
		{ID: 16, Code: "LAW", FirstName: "Liam", LastName: "Lawson", CountryCode: "NZ", ConstructorID: ConstructorRacingBulls},
		{ID: 17, Code: "TSU", FirstName: "Yuki", LastName: "Tsunoda", CountryCode: "JP", ConstructorID: ConstructorRedBull},
		{ID: 18, Code: "BEA", FirstName: "Oliver", LastName: "Bearman", CountryCode: "GB", ConstructorID: ConstructorHaas},
		{ID: 19, Code: "BOR", FirstName: "Gabriel", LastName: "Bortoleto", CountryCode: "BR", ConstructorID: ConstructorSauber},
		{ID: 20, Code: "COL", FirstName: "Franco", LastName: "Colapinto", CountryCode: "AR", ConstructorID: ConstructorAlpine},
	}
}

func SeedUsers() []user.User {
	return []user.User{
		{ID: 1, ExternalID: "auth0|seed-marta", UserName: "marta"},
		{ID: 2, ExternalID: "auth0|seed-jordi", UserName: "jordi"},
		{ID: 3, ExternalID: "auth0|seed-laia", UserName: "laia"},
		{ID: 4, ExternalID: "auth0|seed-pau", UserName: "pau"},
	}
}
