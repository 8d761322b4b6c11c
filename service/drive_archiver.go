package service

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveArchiver uploads bill PDFs into a Google Drive folder
type DriveArchiver struct {
	client   *drive.Service
	folderID string
}

var _ Archiver = (*DriveArchiver)(nil)

// NewDriveArchiver creates a DriveArchiver.
// credentialsPath should be the path to the Service Account JSON file
func NewDriveArchiver(ctx context.Context, credentialsPath, folderID string) (*DriveArchiver, error) {
	client, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveArchiver{client: client, folderID: folderID}, nil
}

func (d *DriveArchiver) Name() string { return "drive" }

// Upload stores the file and returns its web view link.
func (d *DriveArchiver) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	file := &drive.File{
		Name:     name,
		MimeType: contentType,
		Parents:  []string{d.folderID},
	}

	created, err := d.client.Files.Create(file).
		Media(bytes.NewReader(data)).
		Fields("id, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to drive: %w", name, err)
	}

	link := created.WebViewLink
	if link == "" {
		link = fmt.Sprintf("https://drive.google.com/file/d/%s/view", created.Id)
	}
	zap.S().Infof("✅ Drive upload: %s -> %s", name, created.Id)
	return link, nil
}
