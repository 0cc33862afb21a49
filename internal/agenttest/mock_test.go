package agenttest

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"

	"github.com/semmidev/kustos/internal/domain"
)

func TestMockAgent(t *testing.T) {
	Convey("Given a MockAgent with two backups", t, func() {
		ctx := context.Background()
		backups := []domain.Backup{BackupAbc123(), BackupDef456()}
		m := NewMockAgent("remote", backups)

		Convey("Default List behavior", func() {
			got, err := m.List(ctx)

			Convey("It should return the provided slice verbatim", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, backups)
			})
		})

		Convey("Default Get behavior", func() {
			Convey("When the ID matches a provided backup", func() {
				backup, err := m.Get(ctx, "def456")

				Convey("It should return that record", func() {
					So(err, ShouldBeNil)
					So(backup, ShouldNotBeNil)
					So(backup.ID, ShouldEqual, "def456")
				})
			})

			Convey("When the ID matches nothing", func() {
				backup, err := m.Get(ctx, "missing")

				Convey("It should return the absence value", func() {
					So(err, ShouldBeNil)
					So(backup, ShouldBeNil)
				})
			})
		})

		Convey("Default Download behavior", func() {
			stream, err := m.Download(ctx, "abc123")

			Convey("It should fail with ErrBackupNotFound", func() {
				So(stream, ShouldBeNil)
				So(errors.Is(err, domain.ErrBackupNotFound), ShouldBeTrue)
			})
		})

		Convey("Default Upload and Delete behavior", func() {
			Convey("They should succeed inertly", func() {
				So(m.Upload(ctx, StreamFrom([]byte("x")), BackupAbc123()), ShouldBeNil)
				So(m.Delete(ctx, "abc123"), ShouldBeNil)
			})
		})

		Convey("Call pattern assertions", func() {
			Convey("When operations were invoked", func() {
				_, _ = m.List(ctx)
				_ = m.Delete(ctx, "abc123")

				Convey("The mock should record the calls", func() {
					m.AssertCalled(t, "List", mock.Anything)
					m.AssertCalled(t, "Delete", mock.Anything, "abc123")
					m.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
				})
			})
		})

		Convey("Overriding a default", func() {
			Convey("When a test installs its own Download behavior", func() {
				content := io.NopCloser(strings.NewReader("tar bytes"))
				m.On("Download", mock.Anything, mock.Anything).Unset()
				m.On("Download", mock.Anything, "abc123").Return(content, nil)

				stream, err := m.Download(ctx, "abc123")

				Convey("The override should win over the default", func() {
					So(err, ShouldBeNil)
					data, err := io.ReadAll(stream)
					So(err, ShouldBeNil)
					So(string(data), ShouldEqual, "tar bytes")
				})
			})

			Convey("When a test injects an Upload failure", func() {
				m.On("Upload", mock.Anything, mock.Anything, mock.Anything).Unset()
				m.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("quota exceeded"))

				err := m.Upload(ctx, StreamFrom([]byte("x")), BackupAbc123())

				Convey("Callers should see the failure", func() {
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "quota exceeded")
				})
			})
		})

		Convey("Interface conformance", func() {
			Convey("It should satisfy the agent contract", func() {
				var a domain.Agent = m
				So(a.Domain(), ShouldEqual, "test")
				So(a.UniqueID(), ShouldEqual, "remote")
			})
		})
	})
}
