package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jlaffaye/ftp"
)

const defaultTimeout = 30 * time.Second

// File is one rendered artifact to upload.
type File struct {
	Name string
	Data []byte
}

// Conn is the subset of *ftp.ServerConn used for uploads.
type Conn interface {
	Login(user, password string) error
	ChangeDir(path string) error
	MakeDir(path string) error
	Stor(path string, r io.Reader) error
	Quit() error
}

// DialFunc opens a control connection to addr.
type DialFunc func(ctx context.Context, addr string, timeout time.Duration) (Conn, error)

func dialFTP(ctx context.Context, addr string, timeout time.Duration) (Conn, error) {
	return ftp.Dial(addr, ftp.DialWithTimeout(timeout), ftp.DialWithContext(ctx))
}

type FTPConfig struct {
	Addr     string
	User     string
	Password string
	Dir      string
	Timeout  time.Duration
}

// Uploader copies artifacts to an FTP server, typically the web host
// serving the docs directory.
type Uploader struct {
	cfg    FTPConfig
	dial   DialFunc
	logger *slog.Logger
}

func NewUploader(cfg FTPConfig, logger *slog.Logger) *Uploader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.User == "" {
		cfg.User = "anonymous"
		cfg.Password = "anonymous"
	}
	return &Uploader{cfg: cfg, dial: dialFTP, logger: logger}
}

// Enabled reports whether an FTP address is configured.
func (u *Uploader) Enabled() bool {
	return u != nil && u.cfg.Addr != ""
}

// Upload stores every file in the configured remote directory, creating it if needed.
func (u *Uploader) Upload(ctx context.Context, files []File) error {
	if !u.Enabled() {
		return nil
	}

	conn, err := u.dial(ctx, u.cfg.Addr, u.cfg.Timeout)
	if err != nil {
		return fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	if err := conn.Login(u.cfg.User, u.cfg.Password); err != nil {
		return fmt.Errorf("ftp login: %w", err)
	}

	if dir := u.cfg.Dir; dir != "" {
		if err := conn.ChangeDir(dir); err != nil {
			if mkErr := conn.MakeDir(dir); mkErr != nil {
				return fmt.Errorf("ftp mkdir %s: %w", dir, mkErr)
			}
			if err := conn.ChangeDir(dir); err != nil {
				return fmt.Errorf("ftp cwd %s: %w", dir, err)
			}
		}
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := conn.Stor(f.Name, bytes.NewReader(f.Data)); err != nil {
			return fmt.Errorf("ftp stor %s: %w", f.Name, err)
		}
		u.logger.Info("uploaded artifact", "file", f.Name, "bytes", len(f.Data), "addr", u.cfg.Addr)
	}
	return nil
}
