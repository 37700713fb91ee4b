package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/williamokano/gfs_rotator/pkg/storage"
)

// Backend stores backups in a directory on a remote host over SFTP
type Backend struct {
	name       string
	sshClient  *ssh.Client
	sftpClient *sftp.Client
	remotePath string
	retry      storage.RetryConfig
}

func init() {
	storage.RegisterBackend("ssh", func(ctx context.Context, cfg storage.Config) (storage.Backend, error) {
		return New(cfg)
	})
}

// New connects to the remote host and makes sure the remote directory exists
func New(cfg storage.Config) (*Backend, error) {
	sshCfg, err := parseConfig(cfg.Options)
	if err != nil {
		return nil, err
	}

	clientConfig, err := clientConfig(sshCfg)
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(sshCfg.Host, strconv.Itoa(sshCfg.Port))
	sshClient, err := ssh.Dial("tcp", addr, clientConfig)
	if err != nil {
		return nil, storage.WrapError(cfg.Name, "connect", errors.Join(storage.ErrConnFailed, err))
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, storage.WrapError(cfg.Name, "sftp init", err)
	}

	if err := sftpClient.MkdirAll(sshCfg.RemotePath); err != nil {
		sftpClient.Close()
		sshClient.Close()
		return nil, storage.WrapError(cfg.Name, "mkdir", err)
	}

	return &Backend{
		name:       cfg.Name,
		sshClient:  sshClient,
		sftpClient: sftpClient,
		remotePath: sshCfg.RemotePath,
		retry:      storage.DefaultRetryConfig(),
	}, nil
}

func clientConfig(cfg *Config) (*ssh.ClientConfig, error) {
	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHosts != "" {
		cb, err := knownhosts.New(cfg.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("failed to load known_hosts: %w", err)
		}
		hostKeyCallback = cb
	}

	clientConfig := &ssh.ClientConfig{
		User:            cfg.User,
		HostKeyCallback: hostKeyCallback,
		Timeout:         30 * time.Second,
	}

	if cfg.Password != "" {
		clientConfig.Auth = append(clientConfig.Auth, ssh.Password(cfg.Password))
	}

	if cfg.KeyPath != "" {
		key, err := os.ReadFile(cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read SSH key: %w", err)
		}

		var signer ssh.Signer
		if cfg.KeyPassphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(key, []byte(cfg.KeyPassphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(key)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse SSH key: %w", err)
		}

		clientConfig.Auth = append(clientConfig.Auth, ssh.PublicKeys(signer))
	}

	return clientConfig, nil
}

func (b *Backend) Name() string { return b.name }
func (b *Backend) Type() string { return "ssh" }

// Write uploads a file via SFTP
func (b *Backend) Write(ctx context.Context, sourcePath, destPath string) error {
	return storage.WithRetry(ctx, b.retry, func() error {
		localFile, err := os.Open(sourcePath)
		if err != nil {
			return err
		}
		defer localFile.Close()

		remote := path.Join(b.remotePath, destPath)
		if err := b.sftpClient.MkdirAll(path.Dir(remote)); err != nil {
			return storage.WrapError(b.name, "mkdir", err)
		}

		remoteFile, err := b.sftpClient.Create(remote)
		if err != nil {
			return storage.WrapError(b.name, "create", err)
		}
		defer remoteFile.Close()

		if _, err := io.Copy(remoteFile, localFile); err != nil {
			return storage.WrapError(b.name, "upload", err)
		}
		return nil
	})
}

// Delete removes a file via SFTP
func (b *Backend) Delete(ctx context.Context, filePath string) error {
	if err := b.sftpClient.Remove(path.Join(b.remotePath, filePath)); err != nil {
		return storage.WrapError(b.name, "delete", mapError(err))
	}
	return nil
}

// List returns files in the remote directory matching pattern, newest first
func (b *Backend) List(ctx context.Context, pattern string) ([]storage.FileInfo, error) {
	entries, err := b.sftpClient.ReadDir(b.remotePath)
	if err != nil {
		return nil, storage.WrapError(b.name, "list", mapError(err))
	}

	var files []storage.FileInfo
	for _, entry := range entries {
		if entry.IsDir() || entry.Size() == 0 || !storage.MatchPattern(pattern, entry.Name()) {
			continue
		}

		files = append(files, storage.FileInfo{
			Path:    entry.Name(),
			Size:    entry.Size(),
			ModTime: entry.ModTime(),
		})
	}

	storage.SortNewestFirst(files)

	return files, nil
}

// Stat returns file metadata
func (b *Backend) Stat(ctx context.Context, filePath string) (*storage.FileInfo, error) {
	info, err := b.sftpClient.Stat(path.Join(b.remotePath, filePath))
	if err != nil {
		return nil, storage.WrapError(b.name, "stat", mapError(err))
	}

	return &storage.FileInfo{
		Path:    filePath,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Exists checks if file exists
func (b *Backend) Exists(ctx context.Context, filePath string) (bool, error) {
	_, err := b.Stat(ctx, filePath)
	if err != nil {
		if storage.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Close releases the SFTP session and the SSH connection
func (b *Backend) Close() error {
	var errs []error
	if b.sftpClient != nil {
		errs = append(errs, b.sftpClient.Close())
	}
	if b.sshClient != nil {
		errs = append(errs, b.sshClient.Close())
	}
	return errors.Join(errs...)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return storage.ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return errors.Join(storage.ErrPermissionDenied, err)
	default:
		return err
	}
}
