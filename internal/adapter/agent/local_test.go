package agent_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/semmidev/kustos/internal/adapter/agent"
	"github.com/semmidev/kustos/internal/agenttest"
	"github.com/semmidev/kustos/internal/domain"
)

func TestLocalAgent(t *testing.T) {
	Convey("Given a LocalAgent", t, func() {
		tempDir, err := os.MkdirTemp("", "local_agent_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		ctx := context.Background()

		Convey("NewLocal", func() {
			Convey("When creating with a non-existent path", func() {
				newPath := filepath.Join(tempDir, "new", "nested", "dir")
				a, err := agent.NewLocal(newPath)

				Convey("It should create the directory and succeed", func() {
					So(err, ShouldBeNil)
					So(a, ShouldNotBeNil)

					info, err := os.Stat(newPath)
					So(err, ShouldBeNil)
					So(info.IsDir(), ShouldBeTrue)
				})
			})

			Convey("It should identify as backup.local", func() {
				a, err := agent.NewLocal(tempDir)
				So(err, ShouldBeNil)
				So(domain.AgentID(a.Domain(), a.UniqueID()), ShouldEqual, "backup.local")
			})
		})

		Convey("Upload method", func() {
			a, _ := agent.NewLocal(tempDir)
			backup := agenttest.BackupAbc123()

			Convey("When uploading a backup", func() {
				err := a.Upload(ctx, agenttest.StreamFrom([]byte("backup data")), backup)

				Convey("It should write content and record files", func() {
					So(err, ShouldBeNil)

					content, err := os.ReadFile(filepath.Join(tempDir, backup.ID+".tar"))
					So(err, ShouldBeNil)
					So(string(content), ShouldEqual, "backup data")

					_, err = os.Stat(filepath.Join(tempDir, backup.ID+".metadata.json"))
					So(err, ShouldBeNil)
				})

				Convey("Get should return the record", func() {
					So(err, ShouldBeNil)

					got, err := a.Get(ctx, backup.ID)
					So(err, ShouldBeNil)
					So(got, ShouldNotBeNil)
					So(got.Name, ShouldEqual, backup.Name)
					So(got.ID, ShouldEqual, backup.ID)
				})
			})
		})

		Convey("List method", func() {
			a, _ := agent.NewLocal(tempDir)

			Convey("When two backups were uploaded", func() {
				first := agenttest.BackupAbc123()
				second := agenttest.BackupDef456()
				So(a.Upload(ctx, agenttest.StreamFrom([]byte("one")), first), ShouldBeNil)
				So(a.Upload(ctx, agenttest.StreamFrom([]byte("two")), second), ShouldBeNil)

				backups, err := a.List(ctx)

				Convey("It should list them in insertion order", func() {
					So(err, ShouldBeNil)
					So(len(backups), ShouldEqual, 2)
					So(backups[0].ID, ShouldEqual, first.ID)
					So(backups[1].ID, ShouldEqual, second.ID)
				})
			})

			Convey("When the directory is empty", func() {
				backups, err := a.List(ctx)

				Convey("It should return an empty list", func() {
					So(err, ShouldBeNil)
					So(len(backups), ShouldEqual, 0)
				})
			})
		})

		Convey("Loading records from a previous run", func() {
			first, _ := agent.NewLocal(tempDir)
			backup := agenttest.BackupAbc123()
			So(first.Upload(ctx, agenttest.StreamFrom([]byte("data")), backup), ShouldBeNil)

			Convey("When a fresh agent scans the same directory", func() {
				second, err := agent.NewLocal(tempDir)
				So(err, ShouldBeNil)

				got, err := second.Get(ctx, backup.ID)

				Convey("It should find the record left on disk", func() {
					So(err, ShouldBeNil)
					So(got, ShouldNotBeNil)
					So(got.ID, ShouldEqual, backup.ID)
				})
			})

			Convey("When a fresh agent is marked loaded before its first scan", func() {
				second, err := agent.NewLocal(tempDir)
				So(err, ShouldBeNil)
				second.MarkLoaded()

				got, err := second.Get(ctx, backup.ID)

				Convey("It should not see the records on disk", func() {
					So(err, ShouldBeNil)
					So(got, ShouldBeNil)
				})
			})
		})

		Convey("Download method", func() {
			a, _ := agent.NewLocal(tempDir)
			backup := agenttest.BackupAbc123()
			So(a.Upload(ctx, agenttest.StreamFrom([]byte("tar bytes")), backup), ShouldBeNil)

			Convey("When downloading an existing backup", func() {
				stream, err := a.Download(ctx, backup.ID)

				Convey("It should stream the stored content", func() {
					So(err, ShouldBeNil)
					defer stream.Close()

					data, err := io.ReadAll(stream)
					So(err, ShouldBeNil)
					So(string(data), ShouldEqual, "tar bytes")
				})
			})

			Convey("When downloading an unknown backup", func() {
				_, err := a.Download(ctx, "no-such-id")

				Convey("It should return ErrBackupNotFound", func() {
					So(err, ShouldEqual, domain.ErrBackupNotFound)
				})
			})
		})

		Convey("Delete method", func() {
			a, _ := agent.NewLocal(tempDir)
			backup := agenttest.BackupAbc123()
			So(a.Upload(ctx, agenttest.StreamFrom([]byte("data")), backup), ShouldBeNil)

			Convey("When deleting an existing backup", func() {
				err := a.Delete(ctx, backup.ID)

				Convey("It should remove content, record and index entry", func() {
					So(err, ShouldBeNil)

					_, statErr := os.Stat(filepath.Join(tempDir, backup.ID+".tar"))
					So(os.IsNotExist(statErr), ShouldBeTrue)

					got, err := a.Get(ctx, backup.ID)
					So(err, ShouldBeNil)
					So(got, ShouldBeNil)

					backups, err := a.List(ctx)
					So(err, ShouldBeNil)
					So(len(backups), ShouldEqual, 0)
				})
			})

			Convey("When deleting an unknown backup", func() {
				err := a.Delete(ctx, "no-such-id")

				Convey("It should return ErrBackupNotFound", func() {
					So(err, ShouldEqual, domain.ErrBackupNotFound)
				})
			})
		})

		Convey("Upload keeps the declared record untouched", func() {
			a, _ := agent.NewLocal(tempDir)
			backup := agenttest.BackupAbc123()
			backup.Date = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

			So(a.Upload(ctx, agenttest.StreamFrom([]byte("x")), backup), ShouldBeNil)

			got, err := a.Get(ctx, backup.ID)
			So(err, ShouldBeNil)
			So(got.Date.Equal(backup.Date), ShouldBeTrue)
			// declared size is stored as-is; content length is not reconciled
			So(got.Size, ShouldEqual, backup.Size)
		})
	})
}
