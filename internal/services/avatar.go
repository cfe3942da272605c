package services

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"strings"
	"unicode"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/repos"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"github.com/yungbote/lms-backend/internal/platform/media"
)

const avatarSize = 512

// AvatarHost is the slice of the media host avatars need.
type AvatarHost interface {
	UploadAvatar(ctx context.Context, f media.File) (*media.Asset, error)
	DeleteAsset(ctx context.Context, assetID string, kind media.AssetKind) (bool, error)
}

type AvatarService interface {
	CreateAndUploadUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error
	CreateAndUploadUserAvatarFromImage(ctx context.Context, tx *gorm.DB, user *types.User, raw []byte) error
	GenerateUserAvatar(user *types.User) (bytes.Buffer, error)
}

type avatarService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	host     AvatarHost

	bgColors []color.NRGBA
	fontFace font.Face
}

var defaultAvatarColors = []color.NRGBA{
	{R: 0x1E, G: 0x88, B: 0xE5, A: 0xFF},
	{R: 0x43, G: 0xA0, B: 0x47, A: 0xFF},
	{R: 0xE5, G: 0x39, B: 0x35, A: 0xFF},
	{R: 0x8E, G: 0x24, B: 0xAA, A: 0xFF},
	{R: 0xFB, G: 0x8C, B: 0x00, A: 0xFF},
	{R: 0x00, G: 0x89, B: 0x7B, A: 0xFF},
	{R: 0x3F, G: 0x51, B: 0xB5, A: 0xFF},
	{R: 0x6D, G: 0x4C, B: 0x41, A: 0xFF},
}

func NewAvatarService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, host AvatarHost) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	face, err := loadFontFace(gobold.TTF, 206)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}

	return &avatarService{
		db:       db,
		log:      serviceLog,
		userRepo: userRepo,
		host:     host,
		bgColors: defaultAvatarColors,
		fontFace: face,
	}, nil
}

// CreateAndUploadUserAvatar renders the initials avatar for user, uploads it
// and points the user record at it.
func (as *avatarService) CreateAndUploadUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error {
	if user == nil || user.ID == uuid.Nil {
		return fmt.Errorf("user required")
	}
	buf, err := as.GenerateUserAvatar(user)
	if err != nil {
		return err
	}
	return as.store(ctx, tx, user, buf.Bytes())
}

func (as *avatarService) CreateAndUploadUserAvatarFromImage(ctx context.Context, tx *gorm.DB, user *types.User, raw []byte) error {
	if user == nil || user.ID == uuid.Nil {
		return fmt.Errorf("user required")
	}

	processed, err := processUploadedAvatar(raw, avatarSize)
	if err != nil {
		return err
	}
	return as.store(ctx, tx, user, processed.Bytes())
}

func (as *avatarService) store(ctx context.Context, tx *gorm.DB, user *types.User, png []byte) error {
	if as.host == nil {
		return fmt.Errorf("avatar host not configured")
	}
	oldAssetID := strings.TrimSpace(user.AvatarAssetID)

	name := fmt.Sprintf("%s.png", user.ID.String())
	asset, err := as.host.UploadAvatar(ctx, media.BytesFile(name, "image/png", png))
	if err != nil {
		return fmt.Errorf("failed to upload user avatar: %w", err)
	}

	transaction := tx
	if transaction == nil {
		transaction = as.db
	}
	if err := as.userRepo.UpdateAvatarFields(ctx, transaction, user.ID, asset.AssetID, asset.URL); err != nil {
		if _, delErr := as.host.DeleteAsset(context.WithoutCancel(ctx), asset.AssetID, media.KindImage); delErr != nil {
			as.log.Warn("failed to delete orphaned avatar (ignored)", "asset_id", asset.AssetID, "error", delErr)
		}
		return fmt.Errorf("failed to save user avatar: %w", err)
	}
	user.AvatarAssetID = asset.AssetID
	user.AvatarURL = asset.URL

	// Old object goes only after the new one is referenced.
	if oldAssetID != "" && oldAssetID != asset.AssetID {
		if _, err := as.host.DeleteAsset(ctx, oldAssetID, media.KindImage); err != nil {
			as.log.Warn("failed to delete old avatar (ignored)", "asset_id", oldAssetID, "error", err)
		}
	}
	return nil
}

func (as *avatarService) GenerateUserAvatar(user *types.User) (bytes.Buffer, error) {
	const size = avatarSize

	dc := gg.NewContext(size, size)

	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()

	dc.SetColor(as.pickColor(user.ID))
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	initials := computeInitials(user.FirstName, user.LastName)

	dc.SetFontFace(as.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(initials, float64(size)/2, float64(size)/2, 0.5, 0.35)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

func processUploadedAvatar(raw []byte, size int) (bytes.Buffer, error) {
	var out bytes.Buffer

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return out, fmt.Errorf("decode image: %w", err)
	}

	// Center-crop to square
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()
	side := w
	if h < w {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2

	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	draw.Draw(cropped, cropRect, img, image.Point{X: x0, Y: y0}, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.DrawImage(dst, 0, 0)

	if err := dc.EncodePNG(&out); err != nil {
		return out, fmt.Errorf("encode png: %w", err)
	}

	return out, nil
}

// pickColor is stable per user so a regenerated avatar keeps its color.
func (as *avatarService) pickColor(userID uuid.UUID) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write(userID[:])
	return as.bgColors[int(h.Sum32()%uint32(len(as.bgColors)))]
}

func computeInitials(first, last string) string {
	return initialOf(first) + initialOf(last)
}

func initialOf(s string) string {
	for _, r := range strings.TrimSpace(s) {
		return string(unicode.ToUpper(r))
	}
	return "?"
}

func loadFontFace(ttf []byte, size float64) (font.Face, error) {
	parsedFont, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	face := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return face, nil
}
