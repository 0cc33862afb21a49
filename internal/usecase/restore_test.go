package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/semmidev/kustos/internal/adapter/archiver"
	"github.com/semmidev/kustos/internal/adapter/compressor"
	"github.com/semmidev/kustos/internal/agenttest"
	"github.com/semmidev/kustos/internal/config"
	"github.com/semmidev/kustos/internal/domain"
	"github.com/semmidev/kustos/internal/host"
	"github.com/semmidev/kustos/internal/manager"
	"github.com/semmidev/kustos/internal/usecase"
)

func TestRestore(t *testing.T) {
	Convey("Given a backup stored on the local agent", t, func() {
		ctx := context.Background()
		h := host.New()

		localPath := tempDir(t)
		cfg := &config.Config{Backup: config.BackupConfig{LocalPath: localPath}}
		So(agenttest.SetupIntegration(ctx, h, cfg, agenttest.IntegrationOptions{}), ShouldBeNil)
		m := manager.FromHost(h)

		shareDir := filepath.Join(tempDir(t), "share")
		writeFile(t, filepath.Join(shareDir, "notes.txt"), "remember the milk")

		create := usecase.NewCreateBackup(
			m, archiver.NewTar(), compressor.NewGzip(), nil, testLogger{},
			[]string{shareDir}, "", "our_uuid", "1.12.0", true, false,
		)
		So(create.Execute(ctx), ShouldBeNil)

		backups, err := m.ListBackups(ctx)
		So(err, ShouldBeNil)
		So(len(backups), ShouldEqual, 1)
		backupID := backups[0].ID

		restore := usecase.NewRestore(m, archiver.NewTar(), compressor.NewGzip(), testLogger{})

		Convey("When the backup is restored", func() {
			destDir := tempDir(t)
			err := restore.Execute(ctx, manager.LocalAgentID, backupID, destDir)

			Convey("The archived tree should reappear under the destination", func() {
				So(err, ShouldBeNil)

				restored, err := os.ReadFile(filepath.Join(destDir, "share", "notes.txt"))
				So(err, ShouldBeNil)
				So(string(restored), ShouldEqual, "remember the milk")
			})
		})

		Convey("When the agent is unknown", func() {
			err := restore.Execute(ctx, "test.nope", backupID, tempDir(t))

			Convey("It should fail with the agent ID", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown agent")
			})
		})

		Convey("When the backup does not exist on the agent", func() {
			err := restore.Execute(ctx, manager.LocalAgentID, "missing", tempDir(t))

			Convey("It should report ErrBackupNotFound", func() {
				So(errors.Is(err, domain.ErrBackupNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestRestoreUncompressed(t *testing.T) {
	Convey("Given an uncompressed backup on the local agent", t, func() {
		ctx := context.Background()
		h := host.New()

		cfg := &config.Config{Backup: config.BackupConfig{LocalPath: tempDir(t)}}
		So(agenttest.SetupIntegration(ctx, h, cfg, agenttest.IntegrationOptions{}), ShouldBeNil)
		m := manager.FromHost(h)

		sslDir := filepath.Join(tempDir(t), "ssl")
		writeFile(t, filepath.Join(sslDir, "cert.pem"), "not really a cert")

		create := usecase.NewCreateBackup(
			m, archiver.NewTar(), compressor.NewGzip(), nil, testLogger{},
			[]string{sslDir}, "", "our_uuid", "1.12.0", false, false,
		)
		So(create.Execute(ctx), ShouldBeNil)

		backups, err := m.ListBackups(ctx)
		So(err, ShouldBeNil)
		So(len(backups), ShouldEqual, 1)

		Convey("When it is restored", func() {
			destDir := tempDir(t)
			restore := usecase.NewRestore(m, archiver.NewTar(), compressor.NewGzip(), testLogger{})
			err := restore.Execute(ctx, manager.LocalAgentID, backups[0].ID, destDir)

			Convey("The plain tar should extract without decompression", func() {
				So(err, ShouldBeNil)

				restored, err := os.ReadFile(filepath.Join(destDir, "ssl", "cert.pem"))
				So(err, ShouldBeNil)
				So(string(restored), ShouldEqual, "not really a cert")
			})
		})
	})
}
