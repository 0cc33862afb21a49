package archiver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTarArchiver(t *testing.T) {
	Convey("Given a TarArchiver", t, func() {
		a := NewTar()
		ctx := context.Background()

		tempDir, err := os.MkdirTemp("", "archiver_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		Convey("Archive and Extract round trip", func() {
			mediaDir := filepath.Join(tempDir, "media")
			So(os.MkdirAll(filepath.Join(mediaDir, "photos"), 0755), ShouldBeNil)
			So(os.WriteFile(filepath.Join(mediaDir, "photos", "a.jpg"), []byte("jpeg data"), 0644), ShouldBeNil)

			shareDir := filepath.Join(tempDir, "share")
			So(os.MkdirAll(shareDir, 0755), ShouldBeNil)
			So(os.WriteFile(filepath.Join(shareDir, "note.txt"), []byte("shared note"), 0644), ShouldBeNil)

			archivePath := filepath.Join(tempDir, "backup.tar")
			restoreDir := filepath.Join(tempDir, "restore")

			Convey("When archiving two folders and extracting them", func() {
				So(a.Archive(ctx, []string{mediaDir, shareDir}, archivePath), ShouldBeNil)
				So(a.Extract(ctx, archivePath, restoreDir), ShouldBeNil)

				Convey("It should restore both trees under their base names", func() {
					photo, err := os.ReadFile(filepath.Join(restoreDir, "media", "photos", "a.jpg"))
					So(err, ShouldBeNil)
					So(string(photo), ShouldEqual, "jpeg data")

					note, err := os.ReadFile(filepath.Join(restoreDir, "share", "note.txt"))
					So(err, ShouldBeNil)
					So(string(note), ShouldEqual, "shared note")
				})
			})
		})

		Convey("Archive method", func() {
			Convey("When a source does not exist", func() {
				err := a.Archive(ctx, []string{filepath.Join(tempDir, "missing")}, filepath.Join(tempDir, "out.tar"))

				Convey("It should return an error", func() {
					So(err, ShouldNotBeNil)
				})
			})
		})

		Convey("safeJoin function", func() {
			Convey("When an entry tries to escape the destination", func() {
				_, err := safeJoin(tempDir, "../outside")

				Convey("It should be rejected", func() {
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "escapes destination")
				})
			})
		})
	})
}
