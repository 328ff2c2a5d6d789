package model

// All lists every table for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Product{},
		&Order{},
		&OrderItem{},
		&BolsaUniformePayment{},
		&Feedback{},
		&Favorite{},
		&Profile{},
		&Notification{},
	}
}
