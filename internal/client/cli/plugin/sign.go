package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/signpanel/internal/client/cli"
	"github.com/dmitrijs2005/signpanel/internal/client/models"
	"github.com/dmitrijs2005/signpanel/internal/client/services"
	"github.com/dmitrijs2005/signpanel/internal/htmlmd"
)

const msgQuotaExhausted = "no signatures left; redeem an invite or buy a plan"

// readFile is replaced in tests.
var readFile = os.ReadFile

func (a *App) signCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "sign",
			Usage: "sign [-name file_name] [-paid] <image> <folder_token>",
			Help:  "upload a signature image into a workspace folder",
			Run:   a.on("/sign", a.cmdSign),
		},
		{
			Name:  "md",
			Usage: "md [-preview] <file>",
			Help:  "convert an HTML description to text, or render text as HTML",
			Run:   a.home(a.cmdMarkdown),
		},
	}
}

func (a *App) cmdSign(ctx context.Context, args []string) error {
	fs := newFlags("sign")
	name := fs.String("name", "", "")
	paid := fs.Bool("paid", false, "")
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if err := cli.Need(rest, 2); err != nil {
		return err
	}

	image, err := readFile(rest[0])
	if err != nil {
		return err
	}
	fileName := *name
	if fileName == "" {
		fileName = filepath.Base(rest[0])
	}
	upload := models.SignatureUpload{
		Image:       image,
		FileName:    fileName,
		FolderToken: rest[1],
		OpenID:      a.identity.OpenID,
		TenantKey:   a.identity.TenantKey,
		HasQuota:    *paid,
	}
	if r := services.ValidateUploadParams(upload); !r.Valid {
		return a.warn(r.Err().Error())
	}

	check, err := a.api.QuotaCheck(ctx, upload.OpenID, upload.TenantKey)
	if err != nil {
		return a.failed(ctx, "quota check", err)
	}
	if !check.CanSign {
		reason := msgQuotaExhausted
		if check.Reason != nil && *check.Reason != "" {
			reason = *check.Reason
		}
		return a.warn(reason)
	}

	fileToken, err := a.api.UploadSignature(ctx, upload)
	if err != nil {
		return a.failed(ctx, "upload", err)
	}

	if check.ConsumeQuota {
		err := a.api.QuotaConsume(ctx, models.QuotaConsume{
			OpenID:    upload.OpenID,
			TenantKey: upload.TenantKey,
			FileToken: fileToken,
			FileName:  fileName,
		})
		if err != nil {
			// the upload already succeeded
			a.log.Error(ctx, "quota consume failed", "file_token", fileToken, "error", err)
		}
	}
	a.reloadQuota(ctx)

	a.out.Fields("file", fileName, "file token", fileToken)
	return a.done("signature uploaded")
}

func (a *App) cmdMarkdown(_ context.Context, args []string) error {
	fs := newFlags("md")
	preview := fs.Bool("preview", false, "")
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if err := cli.Need(rest, 1); err != nil {
		return err
	}
	src, err := readFile(rest[0])
	if err != nil {
		return err
	}

	convert := htmlmd.Convert
	if *preview {
		convert = htmlmd.Preview
	}
	out, err := convert(string(src))
	if err != nil {
		return fmt.Errorf("convert %s: %w", rest[0], err)
	}
	a.out.Line(out)
	return nil
}
