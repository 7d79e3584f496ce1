package geoip

import (
	"errors"
	"log/slog"
	"net"
	"net/netip"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"
	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/trafficmon/pkg/logger"
)

// Reader looks up a single address.
type Reader interface {
	Lookup(ip netip.Addr) string
	Close() error
}

// OpenFunc opens the database at path.
type OpenFunc func(path string) (Reader, error)

type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	RegisteredCountry struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"registered_country"`
}

type mmdbReader struct {
	db *maxminddb.Reader
}

// OpenMaxMind opens a MaxMind DB file with country records.
func OpenMaxMind(path string) (Reader, error) {
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, err
	}
	return mmdbReader{db: db}, nil
}

func (r mmdbReader) Lookup(ip netip.Addr) string {
	var rec countryRecord
	if err := r.db.Lookup(net.IP(ip.AsSlice()), &rec); err != nil {
		return ""
	}
	if rec.Country.ISOCode != "" {
		return rec.Country.ISOCode
	}
	return rec.RegisteredCountry.ISOCode
}

func (r mmdbReader) Close() error { return r.db.Close() }

// Service serves lookups from the current reader and swaps in a fresh one
// when the file on disk changes.
type Service struct {
	mu      sync.RWMutex
	reader  Reader
	modTime time.Time

	path   string
	open   OpenFunc
	cron   *cron.Cron
	reload sync.Mutex
	log    *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithOpenFunc replaces the MaxMind reader, mainly in tests.
func WithOpenFunc(fn OpenFunc) Option {
	return func(s *Service) {
		if fn != nil {
			s.open = fn
		}
	}
}

// New loads the database and schedules reloads. Call Stop to release it.
func New(cfg Config, opts ...Option) (*Service, error) {
	if cfg.Path == "" {
		return nil, ErrEmptyPath
	}

	s := &Service{
		path: cfg.Path,
		open: OpenMaxMind,
		cron: cron.New(),
		log:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}

	if cfg.ReloadSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.ReloadSchedule, s.scheduledReload); err != nil {
			s.Stop()
			return nil, errors.Join(ErrInvalidSchedule, err)
		}
		s.cron.Start()
	}

	return s, nil
}

func (s *Service) scheduledReload() {
	if err := s.Reload(); err != nil {
		s.log.Error("geoip reload failed",
			logger.Component("geoip"),
			slog.String("path", s.path),
			logger.Error(err),
		)
	}
}

// Reload reopens the database when its modification time changed since the
// last load. The previous reader is closed after the swap.
func (s *Service) Reload() error {
	s.reload.Lock()
	defer s.reload.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		return errors.Join(ErrOpen, err)
	}

	s.mu.RLock()
	unchanged := s.reader != nil && info.ModTime().Equal(s.modTime)
	s.mu.RUnlock()
	if unchanged {
		return nil
	}

	next, err := s.open(s.path)
	if err != nil {
		return errors.Join(ErrOpen, err)
	}

	s.mu.Lock()
	old := s.reader
	s.reader = next
	s.modTime = info.ModTime()
	s.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	s.log.Info("geoip database loaded",
		logger.Component("geoip"),
		slog.String("path", s.path),
		slog.Time("modified", info.ModTime()),
	)
	return nil
}

// Country returns the ISO code for ip, or "" when it is unknown.
func (s *Service) Country(ip string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return ""
	}
	addr = addr.Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() || addr.IsLinkLocalUnicast() {
		return ""
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.reader == nil {
		return ""
	}
	return s.reader.Lookup(addr)
}

// Stop halts scheduled reloads and closes the reader.
func (s *Service) Stop() {
	<-s.cron.Stop().Done()

	s.mu.Lock()
	r := s.reader
	s.reader = nil
	s.mu.Unlock()

	if r != nil {
		_ = r.Close()
	}
}
