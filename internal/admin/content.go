package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/models"
)

const defaultBannerImage = "/logo_green.png"

// ---------------- BANNERS ----------------

type BannerInput struct {
	Title   *string `json:"title"`
	Image   *string `json:"image"`
	Status  *string `json:"status"`
	AddedAt *string `json:"addedAt"`
}

func orDefault(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return trimmed(value)
}

func (s *Service) ListBanners(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	rows, err := s.Store.ListBanners(ctx, activeOnly)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return rows, nil
}

// CreateBanner appends a banner; it is shown only while its status is active.
func (s *Service) CreateBanner(ctx context.Context, in BannerInput) (int64, error) {
	title := trimmed(in.Title)
	if title == "" {
		return 0, apperr.BadRequest("")
	}
	status := orDefault(in.Status, models.BannerActive)
	banner := &models.Banner{
		Title:   title,
		Image:   orDefault(in.Image, defaultBannerImage),
		Status:  status,
		Open:    status == models.BannerActive,
		AddedAt: orDefault(in.AddedAt, s.Now().UTC().Format("2006-01-02")),
	}
	if err := s.Store.CreateBanner(ctx, banner); err != nil {
		return 0, apperr.Internal(err)
	}
	return banner.ID, nil
}

func (s *Service) DeleteBanner(ctx context.Context, id int64) error {
	found, err := s.Store.DeleteBanner(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if !found {
		return apperr.NotFound("")
	}
	return nil
}

// ReorderBanners takes the decoded "ids" array; every element must be an integer.
func (s *Service) ReorderBanners(ctx context.Context, raw []any) error {
	if len(raw) == 0 {
		return apperr.BadRequest("")
	}
	ids := make([]int64, 0, len(raw))
	for _, value := range raw {
		n, ok := value.(json.Number)
		if !ok {
			return apperr.BadRequest("")
		}
		id, err := n.Int64()
		if err != nil {
			return apperr.BadRequest("")
		}
		ids = append(ids, id)
	}
	if err := s.Store.ReorderBanners(ctx, ids); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// ---------------- NEWSLETTERS ----------------

type NewsletterInput struct {
	Title   *string `json:"title"`
	Message *string `json:"message"`
	Image   *string `json:"image"`
	Channel *string `json:"channel"`
}

// ClientNewsletter is the client app view of a newsletter.
type ClientNewsletter struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Image       string `json:"image"`
	Channel     string `json:"channel"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	DeliveredAt string `json:"deliveredAt"`
}

func validChannel(channel string) bool {
	return channel == models.ChannelSplash || channel == models.ChannelPush
}

func (s *Service) CreateNewsletter(ctx context.Context, in NewsletterInput) (*models.Newsletter, error) {
	title, message, channel := trimmed(in.Title), trimmed(in.Message), trimmed(in.Channel)
	if title == "" || message == "" || !validChannel(channel) {
		return nil, apperr.BadRequest("")
	}
	newsletter := &models.Newsletter{
		Title:     title,
		Message:   message,
		Image:     trimmed(in.Image),
		Channel:   channel,
		Status:    models.NewsletterQueued,
		CreatedAt: s.timestamp(),
	}
	if err := s.Store.CreateNewsletter(ctx, newsletter); err != nil {
		return nil, apperr.Internal(err)
	}
	s.Logger.Info("NEWSLETTER", fmt.Sprintf("Newsletter %d queued on %s", newsletter.ID, channel))
	return newsletter, nil
}

// ListNewsletters filters by channel only when it is splash or push. With
// markDelivered on the splash channel, the undelivered rows are marked delivered
// and returned as such.
func (s *Service) ListNewsletters(ctx context.Context, channel, status string, markDelivered bool) ([]models.Newsletter, error) {
	if !validChannel(channel) {
		channel = ""
	}
	rows, err := s.Store.ListNewsletters(ctx, channel, status)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if markDelivered && channel == models.ChannelSplash {
		if err := s.deliver(ctx, rows); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (s *Service) deliver(ctx context.Context, rows []models.Newsletter) error {
	var ids []int64
	for _, row := range rows {
		if row.Status != models.NewsletterDelivered {
			ids = append(ids, row.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	now := s.timestamp()
	if err := s.Store.MarkNewslettersDelivered(ctx, ids, now); err != nil {
		return apperr.Internal(err)
	}
	for i := range rows {
		if rows[i].Status != models.NewsletterDelivered {
			rows[i].Status = models.NewsletterDelivered
			rows[i].DeliveredAt = now
		}
	}
	return nil
}

// ClientNewsletters lists one channel for the client app, splash by default.
func (s *Service) ClientNewsletters(ctx context.Context, channel string, markDelivered bool) ([]ClientNewsletter, error) {
	if channel == "" {
		channel = models.ChannelSplash
	}
	if !validChannel(channel) {
		return nil, apperr.BadRequest("")
	}
	rows, err := s.ListNewsletters(ctx, channel, "", markDelivered)
	if err != nil {
		return nil, err
	}
	out := make([]ClientNewsletter, 0, len(rows))
	for _, row := range rows {
		out = append(out, ClientNewsletter{
			ID: row.ID, Title: row.Title, Message: row.Message, Image: row.Image,
			Channel: row.Channel, Status: row.Status, CreatedAt: row.CreatedAt, DeliveredAt: row.DeliveredAt,
		})
	}
	return out, nil
}

func (s *Service) DeleteNewsletter(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperr.BadRequest("")
	}
	found, err := s.Store.SoftDeleteNewsletter(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if !found {
		return apperr.NotFound("")
	}
	return nil
}

// ---------------- SUPPORT PHONE ----------------

type SupportContact struct {
	Phone     string `json:"phone"`
	MessageRu string `json:"messageRu"`
	MessageUz string `json:"messageUz"`
}

type SupportInput struct {
	Phone     *string `json:"phone"`
	MessageRu *string `json:"messageRu"`
	MessageUz *string `json:"messageUz"`
}

func (s *Service) SupportContact(ctx context.Context) (SupportContact, error) {
	values, err := s.Store.GetSettings(ctx, models.SettingSupportPhone, models.SettingSupportMessageRu, models.SettingSupportMessageUz)
	if err != nil {
		return SupportContact{}, apperr.Internal(err)
	}
	return SupportContact{
		Phone:     values[models.SettingSupportPhone],
		MessageRu: values[models.SettingSupportMessageRu],
		MessageUz: values[models.SettingSupportMessageUz],
	}, nil
}

// UpdateSupportContact overwrites all three values; absent fields become empty.
func (s *Service) UpdateSupportContact(ctx context.Context, in SupportInput) (SupportContact, error) {
	contact := SupportContact{
		Phone:     trimmed(in.Phone),
		MessageRu: trimmed(in.MessageRu),
		MessageUz: trimmed(in.MessageUz),
	}
	err := s.Store.UpsertSettings(ctx, map[string]string{
		models.SettingSupportPhone:     contact.Phone,
		models.SettingSupportMessageRu: contact.MessageRu,
		models.SettingSupportMessageUz: contact.MessageUz,
	})
	if err != nil {
		return SupportContact{}, apperr.Internal(err)
	}
	return contact, nil
}
