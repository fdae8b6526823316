package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationVersions(t *testing.T) {
	files, err := MigrationVersions()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	assert.Equal(t, "001_init.sql", files[0])
	for i := 1; i < len(files); i++ {
		assert.Less(t, files[i-1], files[i])
	}
}

func TestInitMigration_DeclaresConstraints(t *testing.T) {
	raw, err := migrationFiles.ReadFile("migrations/001_init.sql")
	require.NoError(t, err)
	sql := string(raw)

	// Repositories map these names to domain errors.
	for _, name := range []string{
		"uk_pay_components_code",
		"uk_pay_components_name",
		"uk_employees_tax_id",
		"uk_competences_period",
		"uk_events_competence_description",
		"uk_employee_summaries_pair",
		"fk_line_items_employee",
		"fk_line_items_pay_component",
	} {
		assert.True(t, strings.Contains(sql, name), "missing constraint %s", name)
	}
}
