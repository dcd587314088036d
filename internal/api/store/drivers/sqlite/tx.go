package sqlite

import (
	"database/sql"

	"github.com/threatcombat/threatcombat/internal/api/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Users() store.Users         { return &usersRepo{db: t.tx} }
func (t *txStore) Chapters() store.Chapters   { return &chaptersRepo{db: t.tx} }
func (t *txStore) AuditLogs() store.AuditLogs { return &auditLogsRepo{db: t.tx} }
func (t *txStore) Research() store.Research   { return &researchRepo{db: t.tx} }
func (t *txStore) Events() store.Events       { return &eventsRepo{db: t.tx} }
func (t *txStore) Courses() store.Courses     { return &coursesRepo{db: t.tx} }
