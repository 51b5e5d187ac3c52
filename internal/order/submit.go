package order

import (
	"context"
	"fmt"

	"ms-restaurant/internal/db"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/poster"
)

// submission is everything sent to the POS for one order.
type submission struct {
	Target         posterTarget
	PosterClientID string
	Products       []poster.Product
	Comment        string
	Address        string
}

// outcome is the result of a POS submission after the order row was updated.
type outcome struct {
	Sent     bool
	Data     any
	APIError string
	// Err is a transport failure or timeout; Data is nil then.
	Err error
}

// errorBody is the client-facing error of a rejected submission.
func (o outcome) errorBody() any {
	if o.APIError != "" {
		return map[string]any{"message": o.APIError, "raw": o.Data}
	}
	return o.Data
}

func (s *Service) incomingOrder(order *models.Order, sub submission) poster.IncomingOrder {
	incoming := poster.IncomingOrder{
		SpotID:   sub.Target.SpotID,
		ClientID: sub.PosterClientID,
		Phone:    order.ClientPhone,
		Address:  sub.Address,
		Comment:  sub.Comment,
		Products: sub.Products,
	}
	if sub.PosterClientID == "" {
		incoming.FirstName = order.ClientName
	}
	if order.ServiceMode != nil {
		incoming.ServiceMode = *order.ServiceMode
	}
	if order.DeliveryPrice != nil {
		incoming.DeliveryPrice = *order.DeliveryPrice
	}
	return incoming
}

// submit sends the order to the POS and records sent or failed with the verbatim reply.
func (s *Service) submit(ctx context.Context, order *models.Order, sub submission) outcome {
	s.setStep(ctx, order.ID, models.StepSubmitting)
	defer s.setStep(ctx, order.ID, models.StepDone)

	resp, err := s.POS.CreateIncomingOrder(ctx, sub.Target.Token, s.incomingOrder(order, sub))
	if err != nil {
		s.Logger.LogOrder("POSTER_EXCEPTION", order.ID, fmt.Sprintf("Spot %s: %v", sub.Target.SpotID, err))
		s.markFailed(ctx, order, messagePayload(err.Error()))
		return outcome{Err: err}
	}

	if resp.Failed() {
		s.Logger.LogOrder("POSTER_ERROR", order.ID, fmt.Sprintf("Spot %s HTTP %d: %s", sub.Target.SpotID, resp.StatusCode, resp.Payload()))
		payload := resp.Payload()
		s.markFailed(ctx, order, &payload)
		return outcome{Data: resp.Data, APIError: resp.APIError()}
	}

	payload := resp.Payload()
	if err := s.Store.UpdateOrderStatus(ctx, order.ID, models.OrderSent, &payload, nil); err != nil {
		s.Logger.LogOrder("STATUS_FAILED", order.ID, fmt.Sprintf("Could not mark order sent: %v", err))
	}
	meta := poster.ParseIncomingMeta(resp.Data)
	if !meta.Empty() {
		err := s.Store.UpdateOrderPosterMeta(ctx, order.ID, db.PosterMeta{
			IncomingID: meta.IncomingID,
			Status:     meta.Status,
			UpdatedAt:  meta.UpdatedAt,
		})
		if err != nil {
			s.Logger.LogOrder("META_FAILED", order.ID, fmt.Sprintf("Could not store POS ids: %v", err))
		}
		order.PosterIncomingID = meta.IncomingID
	}
	s.Logger.LogOrder("POSTER_OK", order.ID, fmt.Sprintf("Spot %s incoming order %s", sub.Target.SpotID, meta.IncomingID))
	s.publishStatus(ctx, order, models.OrderSent)
	return outcome{Sent: true, Data: resp.Data}
}
