package main

import "gorm.io/gorm"

func tableName(db *gorm.DB, model interface{}) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return "?"
	}
	return stmt.Schema.Table
}
