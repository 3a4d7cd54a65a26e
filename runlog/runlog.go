/*
Package runlog keeps the training history in SQLite: one record per run
and one row per epoch with train and validation metrics.
*/
package runlog

import (
	"database/sql"
	"fmt"
	"github.com/google/uuid"
	"github.com/klauspost/cpuid/v2"
	_ "github.com/mattn/go-sqlite3"
	"go-ml.dev/pkg/sleepnet/model"
	"go-ml.dev/pkg/zorros"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	variant     TEXT NOT NULL,
	dataset     TEXT NOT NULL,
	seed        INTEGER NOT NULL,
	host        TEXT DEFAULT '',
	started_at  DATETIME NOT NULL,
	finished_at DATETIME,
	best_epoch  INTEGER DEFAULT -1,
	stopped     TEXT DEFAULT '',
	test_loss   REAL,
	test_acc    REAL
);
CREATE TABLE IF NOT EXISTS epochs (
	run_id      TEXT NOT NULL,
	epoch       INTEGER NOT NULL,
	train_loss  REAL NOT NULL,
	train_acc   REAL NOT NULL,
	valid_loss  REAL NOT NULL,
	valid_acc   REAL NOT NULL,
	score       REAL NOT NULL,
	PRIMARY KEY (run_id, epoch)
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

/*
Run is the training run record
*/
type Run struct {
	ID        string
	Variant   string
	Dataset   string
	Seed      int64
	Host      string
	StartedAt time.Time
}

/*
Log is an open training history database
*/
type Log struct {
	db *sql.DB
}

/*
Open opens or creates the database at path
*/
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to open run log %v: %v", path, err.Error())
	}
	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, zorros.Wrapf(err, "failed to initialize run log %v: %v", path, err.Error())
	}
	return &Log{db}, nil
}

func (l *Log) Close() error {
	return l.db.Close()
}

/*
Host describes the machine the run is executed on
*/
func Host() string {
	return fmt.Sprintf("%s (%d logical cores)", cpuid.CPU.BrandName, cpuid.CPU.LogicalCores)
}

/*
NewRun creates a run record with a fresh id
*/
func NewRun(variant, dataset string, seed int64) Run {
	return Run{
		ID:        uuid.New().String(),
		Variant:   variant,
		Dataset:   dataset,
		Seed:      seed,
		Host:      Host(),
		StartedAt: time.Now().UTC(),
	}
}

/*
Begin stores the run record
*/
func (l *Log) Begin(r Run) error {
	_, err := l.db.Exec(
		`INSERT INTO runs (id, variant, dataset, seed, host, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Variant, r.Dataset, r.Seed, r.Host, r.StartedAt)
	if err != nil {
		return zorros.Wrapf(err, "failed to store run %v: %v", r.ID, err.Error())
	}
	return nil
}

/*
Epochs stores the training history of the report in one transaction
*/
func (l *Log) Epochs(runID string, report *model.Report) (err error) {
	tx, err := l.db.Begin()
	if err != nil {
		return zorros.Trace(err)
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare(
		`INSERT INTO epochs (run_id, epoch, train_loss, train_acc, valid_loss, valid_acc, score) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return zorros.Trace(err)
	}
	defer stmt.Close()
	for i, it := range report.History {
		if _, err = stmt.Exec(runID, i, it.Train.Loss, it.Train.Accuracy, it.Valid.Loss, it.Valid.Accuracy, it.Score); err != nil {
			return zorros.Wrapf(err, "failed to store epoch %d of run %v: %v", i, runID, err.Error())
		}
	}
	_, err = tx.Exec(`UPDATE runs SET best_epoch = ?, stopped = ? WHERE id = ?`, report.TheBest, report.Stopped, runID)
	if err != nil {
		return zorros.Trace(err)
	}
	return tx.Commit()
}

/*
Finish records the test metrics and the finish time
*/
func (l *Log) Finish(runID string, test model.Summary) error {
	res, err := l.db.Exec(
		`UPDATE runs SET finished_at = ?, test_loss = ?, test_acc = ? WHERE id = ?`,
		time.Now().UTC(), test.Loss, test.Accuracy, runID)
	if err != nil {
		return zorros.Trace(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return zorros.Errorf("run %v is not found", runID)
	}
	return nil
}

/*
History reads the stored epochs of the run in order
*/
func (l *Log) History(runID string) (history []model.Iteration, err error) {
	rows, err := l.db.Query(
		`SELECT epoch, train_loss, train_acc, valid_loss, valid_acc, score FROM epochs WHERE run_id = ? ORDER BY epoch`,
		runID)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	defer rows.Close()
	for rows.Next() {
		it := model.Iteration{Train: model.Summary{Subset: model.TrainSubset}, Valid: model.Summary{Subset: model.ValidSubset}}
		var epoch int
		if err = rows.Scan(&epoch, &it.Train.Loss, &it.Train.Accuracy, &it.Valid.Loss, &it.Valid.Accuracy, &it.Score); err != nil {
			return nil, zorros.Trace(err)
		}
		it.Train.Iteration, it.Valid.Iteration = epoch, epoch
		history = append(history, it)
	}
	return history, rows.Err()
}

/*
Summary is the stored run record with its outcome
*/
type Summary struct {
	Run
	BestEpoch int
	Stopped   string
	Finished  bool
	Test      model.Summary
}

/*
Get reads the run record
*/
func (l *Log) Get(runID string) (s Summary, err error) {
	var finished sql.NullTime
	var loss, acc sql.NullFloat64
	err = l.db.QueryRow(
		`SELECT id, variant, dataset, seed, host, started_at, finished_at, best_epoch, stopped, test_loss, test_acc FROM runs WHERE id = ?`,
		runID).Scan(&s.ID, &s.Variant, &s.Dataset, &s.Seed, &s.Host, &s.StartedAt, &finished, &s.BestEpoch, &s.Stopped, &loss, &acc)
	if err == sql.ErrNoRows {
		return s, zorros.Errorf("run %v is not found", runID)
	}
	if err != nil {
		return s, zorros.Trace(err)
	}
	s.Finished = finished.Valid
	s.Test = model.Summary{Subset: model.TestSubset, Loss: loss.Float64, Accuracy: acc.Float64}
	return
}
