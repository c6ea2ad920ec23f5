package user_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func pngBytes(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("AvatarStore", func() {
	var (
		dir   string
		store *user.AvatarStore
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		store = user.NewAvatarStore(dir, 64)
	})

	It("converts an upload into a square webp thumbnail", func() {
		url, err := store.Save("u1", bytes.NewReader(pngBytes(200, 100)))
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(MatchRegexp(`^/avatars/u1-[0-9a-f]{8}\.webp$`))

		data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, user.AvatarURLPrefix)))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data[:4])).To(Equal("RIFF"))
		Expect(string(data[8:12])).To(Equal("WEBP"))
	})

	It("rejects data that is not an image", func() {
		_, err := store.Save("u1", strings.NewReader("not an image"))
		Expect(internal.HasCode(err, internal.ErrCodeInvalidImage)).To(BeTrue())
	})

	It("rejects an id that escapes the avatar directory", func() {
		_, err := store.Save("../u1", bytes.NewReader(pngBytes(10, 10)))
		Expect(err).To(HaveOccurred())
	})

	It("keeps only the current avatar after a prune", func() {
		first, err := store.Save("u1", bytes.NewReader(pngBytes(10, 10)))
		Expect(err).NotTo(HaveOccurred())
		second, err := store.Save("u1", bytes.NewReader(pngBytes(10, 10)))
		Expect(err).NotTo(HaveOccurred())
		other, err := store.Save("u2", bytes.NewReader(pngBytes(10, 10)))
		Expect(err).NotTo(HaveOccurred())

		Expect(store.Prune("u1", second)).To(Succeed())

		Expect(filepath.Join(dir, strings.TrimPrefix(first, user.AvatarURLPrefix))).NotTo(BeAnExistingFile())
		Expect(filepath.Join(dir, strings.TrimPrefix(second, user.AvatarURLPrefix))).To(BeAnExistingFile())
		Expect(filepath.Join(dir, strings.TrimPrefix(other, user.AvatarURLPrefix))).To(BeAnExistingFile())
	})

	It("removes a stored avatar and ignores one that is already gone", func() {
		url, err := store.Save("u1", bytes.NewReader(pngBytes(10, 10)))
		Expect(err).NotTo(HaveOccurred())

		Expect(store.Remove(url)).To(Succeed())
		Expect(filepath.Join(dir, strings.TrimPrefix(url, user.AvatarURLPrefix))).NotTo(BeAnExistingFile())
		Expect(store.Remove(url)).To(Succeed())
		Expect(store.Remove("/avatars/../config.yml")).NotTo(Succeed())
	})
})
