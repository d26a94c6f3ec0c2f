package packagesync

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"votd/internal/logging"
	"votd/internal/services"
)

const folderMimeType = "application/vnd.google-apps.folder"

// DriveOptions locates the shared folder and authorizes access to it.
type DriveOptions struct {
	Dir          string
	Folder       string
	FolderID     string
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Drive syncs packages with a Google Drive folder.
type Drive struct {
	svc      *drive.Service
	dir      string
	folder   string
	folderID string
	logger   *slog.Logger
}

var _ Syncer = (*Drive)(nil)

// NewDrive builds a Drive syncer authorized by a refresh token. Extra client
// options are applied after the token source.
func NewDrive(ctx context.Context, opts DriveOptions, logger *slog.Logger, clientOpts ...option.ClientOption) (*Drive, error) {
	conf := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}
	source := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: opts.RefreshToken})
	all := append([]option.ClientOption{option.WithTokenSource(source)}, clientOpts...)
	svc, err := drive.NewService(ctx, all...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "packagesync", "drive client", "", err)
	}
	return &Drive{
		svc:      svc,
		dir:      opts.Dir,
		folder:   opts.Folder,
		folderID: opts.FolderID,
		logger:   logging.NewComponentLogger(logger, "packagesync"),
	}, nil
}

func quote(value string) string {
	return "'" + strings.ReplaceAll(strings.ReplaceAll(value, `\`, `\\`), "'", `\'`) + "'"
}

// resolveFolder finds the folder id, creating the folder when create is set.
func (d *Drive) resolveFolder(ctx context.Context, create bool) (string, error) {
	if d.folderID != "" {
		return d.folderID, nil
	}
	q := fmt.Sprintf("mimeType = %s and name = %s and trashed = false", quote(folderMimeType), quote(d.folder))
	list, err := d.svc.Files.List().Q(q).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "packagesync", "find folder", d.folder, err)
	}
	if len(list.Files) > 0 {
		d.folderID = list.Files[0].Id
		return d.folderID, nil
	}
	if !create {
		return "", nil
	}
	folder, err := d.svc.Files.Create(&drive.File{Name: d.folder, MimeType: folderMimeType}).
		Fields("id").Context(ctx).Do()
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "packagesync", "create folder", d.folder, err)
	}
	d.logger.Info("drive folder created", logging.String("folder", d.folder))
	d.folderID = folder.Id
	return d.folderID, nil
}

func (d *Drive) find(ctx context.Context, folderID, name string) (*drive.File, error) {
	q := fmt.Sprintf("name = %s and %s in parents and trashed = false", quote(name), quote(folderID))
	list, err := d.svc.Files.List().Q(q).
		Fields("files(id, name, modifiedTime, md5Checksum, size)").
		Context(ctx).Do()
	if err != nil {
		return nil, services.Wrap(services.ErrExternal, "packagesync", "find package", name, err)
	}
	if len(list.Files) == 0 {
		return nil, nil
	}
	return list.Files[0], nil
}

// DownloadIfNewer fetches name when the remote copy differs from the local
// one and is not older than it.
func (d *Drive) DownloadIfNewer(ctx context.Context, name string) (string, error) {
	local := filepath.Join(d.dir, name)
	info, statErr := os.Stat(local)
	if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
		return "", fmt.Errorf("stat package %s: %w", local, statErr)
	}
	haveLocal := statErr == nil

	folderID, err := d.resolveFolder(ctx, false)
	if err != nil {
		return "", err
	}
	var remote *drive.File
	if folderID != "" {
		if remote, err = d.find(ctx, folderID, name); err != nil {
			return "", err
		}
	}
	switch {
	case remote == nil && haveLocal:
		d.logger.Info("package only available locally", logging.String("package", name))
		return local, nil
	case remote == nil:
		d.logger.Info("package not found", logging.String("package", name))
		return "", nil
	}

	remoteTime, _ := time.Parse(time.RFC3339, remote.ModifiedTime)
	if haveLocal {
		sum, err := fileMD5(local)
		if err != nil {
			return "", err
		}
		if sum == remote.Md5Checksum {
			d.logger.Debug("package up to date", logging.String("package", name))
			return local, nil
		}
		if !remoteTime.IsZero() && !remoteTime.After(info.ModTime()) {
			logging.WarnWithContext(d.logger, "local package newer than drive copy", "package_local_newer",
				logging.String("package", name),
				logging.String(logging.FieldImpact, "local copy kept"),
			)
			return local, nil
		}
	}
	if err := d.download(ctx, remote, local, remoteTime); err != nil {
		return "", err
	}
	d.logger.Info("package downloaded", logging.String("package", name), logging.Int64("bytes", remote.Size))
	return local, nil
}

func (d *Drive) download(ctx context.Context, remote *drive.File, local string, modTime time.Time) error {
	resp, err := d.svc.Files.Get(remote.Id).Context(ctx).Download()
	if err != nil {
		return services.Wrap(services.ErrExternal, "packagesync", "download", remote.Name, err)
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return fmt.Errorf("create package dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(local), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp package: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return services.Wrap(services.ErrExternal, "packagesync", "download", remote.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp package: %w", err)
	}
	if err := os.Rename(tmp.Name(), local); err != nil {
		return fmt.Errorf("install package %s: %w", local, err)
	}
	if !modTime.IsZero() {
		_ = os.Chtimes(local, modTime, modTime)
	}
	return nil
}

// Upload creates or replaces the file called like path in the folder.
func (d *Drive) Upload(ctx context.Context, path string) error {
	name := filepath.Base(path)
	folderID, err := d.resolveFolder(ctx, true)
	if err != nil {
		return err
	}
	remote, err := d.find(ctx, folderID, name)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open package %s: %w", path, err)
	}
	defer f.Close()

	media := googleapi.ContentType("application/octet-stream")
	if remote != nil {
		_, err = d.svc.Files.Update(remote.Id, &drive.File{}).Media(f, media).Context(ctx).Do()
	} else {
		_, err = d.svc.Files.Create(&drive.File{Name: name, Parents: []string{folderID}}).Media(f, media).Context(ctx).Do()
	}
	if err != nil {
		return services.Wrap(services.ErrExternal, "packagesync", "upload", name, err)
	}
	d.logger.Info("package uploaded", logging.String("package", name), logging.Bool("replaced", remote != nil))
	return nil
}

func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
