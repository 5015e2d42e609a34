package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Level{},
		&Group{},
		&Teacher{},
		&Student{},
		&Task{},
		&Question{},
		&Answer{},
		&StudentTask{},
		&StudentAnswer{},
		&ActivityLog{},
	}
}
