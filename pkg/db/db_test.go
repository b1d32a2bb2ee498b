package db

import (
	"testing"

	"github.com/stretchr/testify/require"

	"recycleadmin/pkg/config"
)

func TestDSNEscapesCredentials(t *testing.T) {
	dsn := DSN(config.DBConfig{Host: "db", Port: 5432, User: "admin", Password: "p@ss/word", Name: "recycle"})
	require.Equal(t, "postgres://admin:p%40ss%2Fword@db:5432/recycle?sslmode=disable", dsn)
}

func TestDescribeSQL(t *testing.T) {
	op, table := describeSQL(`
		INSERT INTO operator_actions (action) VALUES ($1)`)
	require.Equal(t, "insert", op)
	require.Equal(t, "operator_actions", table)

	op, table = describeSQL("UPDATE outbox_events SET status = 'sent'")
	require.Equal(t, "update", op)
	require.Equal(t, "outbox_events", table)

	op, table = describeSQL("")
	require.Equal(t, "unknown", op)
	require.Equal(t, "unknown", table)
}
