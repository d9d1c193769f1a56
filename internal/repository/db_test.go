package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"familytree_go/internal/model"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name    string
		config  DBConfig
		want    string
		wantErr bool
	}{
		{
			name:   "postgres",
			config: DBConfig{Type: "postgres", Host: "db", Port: 5432, Username: "u", Password: "p", Database: "tree"},
			want:   "host=db port=5432 user=u password=p dbname=tree sslmode=disable",
		},
		{
			name:   "mysql",
			config: DBConfig{Type: "mysql", Host: "db", Port: 3306, Username: "u", Password: "p", Database: "tree"},
			want:   "u:p@tcp(db:3306)/tree?charset=utf8mb4&parseTime=True&loc=Local",
		},
		{
			name:   "sqlite",
			config: DBConfig{Type: "sqlite", Database: "tree.db"},
			want:   "tree.db",
		},
		{
			name:    "unknown",
			config:  DBConfig{Type: "oracle"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.config.DSN()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewMemoryDB_MigratesAllTables(t *testing.T) {
	db, err := NewMemoryDB()
	require.NoError(t, err)
	defer db.Close()

	for _, m := range model.AllModels() {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestMemberIDGeneratedOnCreate(t *testing.T) {
	db, err := NewMemoryDB()
	require.NoError(t, err)
	defer db.Close()

	member := &model.Member{FirstName: "Ada", LastName: "Obi", Gender: model.GenderFemale, Status: model.StatusAlive}
	require.NoError(t, db.Create(member).Error)
	assert.Len(t, member.ID, 36)
}

func TestSpouseSlotsAreUnique(t *testing.T) {
	db, err := NewMemoryDB()
	require.NoError(t, err)
	defer db.Close()

	husband := "h-1"
	require.NoError(t, db.Create(&model.Spouse{HusbandID: &husband}).Error)
	assert.ErrorIs(t, db.Create(&model.Spouse{HusbandID: &husband}).Error, gorm.ErrDuplicatedKey)
}

func TestPaginate(t *testing.T) {
	db, err := NewMemoryDB()
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, db.Create(&model.Gallery{Image: "/uploads/x.png"}).Error)
	}

	var items []model.Gallery
	require.NoError(t, db.Scopes(Paginate(2, 2)).Find(&items).Error)
	assert.Len(t, items, 2)

	require.NoError(t, db.Scopes(Paginate(3, 2)).Find(&items).Error)
	assert.Len(t, items, 1)
}
