package main

import (
	"github.com/brianvoe/gofakeit/v7"
)

// Person is the record type of the demo.
type Person struct {
	FirstName   string
	LastName    string
	Age         int
	Email       string
	PhoneNumber string `tabulate:"Phone Number"`
	Address     string
}

// randomPeople generates n people. A zero seed picks a random one.
func randomPeople(n int, seed uint64) []Person {
	faker := gofakeit.New(seed)
	people := make([]Person, n)
	for i := range people {
		people[i] = Person{
			FirstName:   faker.FirstName(),
			LastName:    faker.LastName(),
			Age:         faker.IntRange(18, 100),
			Email:       faker.Email(),
			PhoneNumber: faker.Phone(),
			Address:     faker.Street(),
		}
	}
	return people
}
