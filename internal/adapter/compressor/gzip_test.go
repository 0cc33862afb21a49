package compressor

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGzipCompressor(t *testing.T) {
	Convey("Given a GzipCompressor", t, func() {
		c := NewGzip()

		tempDir, err := os.MkdirTemp("", "compressor_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		Convey("Compress and Decompress round trip", func() {
			content := []byte("backup archive payload for compression")
			inputPath := filepath.Join(tempDir, "input.tar")
			So(os.WriteFile(inputPath, content, 0644), ShouldBeNil)

			compressedPath := filepath.Join(tempDir, "input.tar.gz")
			restoredPath := filepath.Join(tempDir, "restored.tar")

			Convey("When compressing then decompressing", func() {
				So(c.Compress(inputPath, compressedPath), ShouldBeNil)
				So(c.Decompress(compressedPath, restoredPath), ShouldBeNil)

				Convey("It should restore the original content", func() {
					restored, err := os.ReadFile(restoredPath)
					So(err, ShouldBeNil)
					So(restored, ShouldResemble, content)
				})
			})
		})

		Convey("Compress method", func() {
			Convey("When the source file does not exist", func() {
				err := c.Compress(filepath.Join(tempDir, "missing"), filepath.Join(tempDir, "out.gz"))

				Convey("It should return an error", func() {
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "failed to open source file")
				})
			})
		})

		Convey("Decompress method", func() {
			Convey("When the source is not gzip data", func() {
				badPath := filepath.Join(tempDir, "not_gzip")
				So(os.WriteFile(badPath, []byte("plain text"), 0644), ShouldBeNil)

				err := c.Decompress(badPath, filepath.Join(tempDir, "out"))

				Convey("It should return an error", func() {
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "failed to create gzip reader")
				})
			})
		})
	})
}
