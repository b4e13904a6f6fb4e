package ingest

import (
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jlaffaye/ftp"
)

// BatchFile is one fetched alarm-log export, ready for ReadTable.
type BatchFile struct {
	Name string
	Data []byte
}

// FTPSource fetches alarm-log exports from a remote drop directory.
// Network equipment commonly publishes its alarm exports this way.
type FTPSource struct {
	Addr string // host:port
	User string
	Pass string
	Dir  string
}

// NewFTPSource returns a source with anonymous credentials unless
// overridden.
func NewFTPSource(addr, user, pass, dir string) *FTPSource {
	if user == "" {
		user = "anonymous"
		pass = "anonymous"
	}
	return &FTPSource{Addr: addr, User: user, Pass: pass, Dir: dir}
}

// FetchBatch downloads every tabular export in the drop directory.
// Transient connection failures are retried with exponential backoff;
// an unusable individual file is skipped here only if it cannot be
// retrieved, parse errors are left to the reader stage.
func (s *FTPSource) FetchBatch() ([]BatchFile, error) {
	var files []BatchFile
	operation := func() error {
		conn, err := ftp.Dial(s.Addr, ftp.DialWithTimeout(30*time.Second))
		if err != nil {
			return fmt.Errorf("ftp dial: %w", err)
		}
		defer conn.Quit()

		if err := conn.Login(s.User, s.Pass); err != nil {
			return backoff.Permanent(fmt.Errorf("ftp login: %w", err))
		}

		entries, err := conn.List(s.Dir)
		if err != nil {
			return fmt.Errorf("ftp list %s: %w", s.Dir, err)
		}

		files = files[:0]
		for _, entry := range entries {
			if entry.Type != ftp.EntryTypeFile || !isTabularName(entry.Name) {
				continue
			}
			resp, err := conn.Retr(path.Join(s.Dir, entry.Name))
			if err != nil {
				return fmt.Errorf("ftp retr %s: %w", entry.Name, err)
			}
			data, err := io.ReadAll(resp)
			resp.Close()
			if err != nil {
				return fmt.Errorf("read %s: %w", entry.Name, err)
			}
			files = append(files, BatchFile{Name: entry.Name, Data: data})
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}
	return files, nil
}

func isTabularName(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv", ".tsv", ".txt", ".xlsx":
		return true
	}
	return false
}
