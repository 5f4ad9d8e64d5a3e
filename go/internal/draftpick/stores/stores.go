// Package stores opens the identity authority and both mirrors for the
// configured backends.
package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftmirror/go/internal/dbconfig"
	"github.com/mcdev12/draftmirror/go/internal/draftpick"
	"github.com/mcdev12/draftmirror/go/internal/draftpick/authority"
	"github.com/mcdev12/draftmirror/go/internal/draftpick/kvmirror"
	"github.com/mcdev12/draftmirror/go/internal/draftpick/memstore"
	"github.com/mcdev12/draftmirror/go/internal/draftpick/objmirror"
	"github.com/mcdev12/draftmirror/go/internal/jsconn"
)

const (
	MirrorJetStream = "jetstream"
	MirrorMemory    = "memory"
)

type Config struct {
	DB            dbconfig.Config
	MirrorBackend string
	NATS          jsconn.Config
}

// Stores holds open handles to every backend.
type Stores struct {
	DB        *sql.DB
	Authority *authority.Repository
	KeyValue  draftpick.KeyValueMirror
	Objects   draftpick.ObjectMirror
	NATS      *jsconn.Conn // nil for the memory backend
}

// Open connects to the authority, applies migrations and opens the mirrors.
func Open(ctx context.Context, cfg Config) (*Stores, error) {
	dialect, err := cfg.DB.Dialect()
	if err != nil {
		return nil, err
	}

	db, err := dbconfig.Open(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	log.Info().Str("database", cfg.DB.Describe()).Msg("connected to database")

	s := &Stores{
		DB:        db,
		Authority: authority.NewRepository(db, dialect),
	}
	if err := s.Authority.Migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate authority: %w", err)
	}

	switch cfg.MirrorBackend {
	case MirrorMemory:
		s.KeyValue = memstore.NewKeyValue()
		s.Objects = memstore.NewObjects()
		log.Warn().Msg("using in-memory mirrors, mirror data is lost on restart")

	case MirrorJetStream, "":
		if err := s.openJetStream(ctx, cfg.NATS); err != nil {
			s.Close()
			return nil, err
		}

	default:
		s.Close()
		return nil, fmt.Errorf("unknown mirror backend %q", cfg.MirrorBackend)
	}

	return s, nil
}

func (s *Stores) openJetStream(ctx context.Context, cfg jsconn.Config) error {
	conn, err := jsconn.Connect(cfg)
	if err != nil {
		return err
	}
	s.NATS = conn

	kv, err := conn.EnsureKeyValue(ctx)
	if err != nil {
		return err
	}
	objects, err := conn.EnsureObjectStore(ctx)
	if err != nil {
		return err
	}

	s.KeyValue = kvmirror.NewStore(kv)
	s.Objects = objmirror.NewStore(objects)
	log.Info().
		Str("url", cfg.URL).
		Str("kv_bucket", cfg.KeyValueBucket).
		Str("object_bucket", cfg.ObjectBucket).
		Msg("connected to JetStream mirrors")
	return nil
}

// Ping checks the authority database.
func (s *Stores) Ping(ctx context.Context) error {
	return s.Authority.Ping(ctx)
}

// Close releases every open handle.
func (s *Stores) Close() error {
	var errs []error
	if s.NATS != nil {
		errs = append(errs, s.NATS.Close())
	}
	if s.DB != nil {
		errs = append(errs, s.DB.Close())
	}
	return errors.Join(errs...)
}
