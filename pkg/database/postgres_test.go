package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/course-planner-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "planner",
		Password: `it's a secret`,
		Name:     "course_planner",
		SSLMode:  "disable",
	})
	assert.Equal(t, `host=localhost port=5432 user=planner password='it\'s a secret' dbname=course_planner sslmode=disable`, dsn)
}

func TestDSNSkipsEmptyValues(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, Name: "planner"})
	assert.Equal(t, "host=db port=5432 dbname=planner", dsn)
}
