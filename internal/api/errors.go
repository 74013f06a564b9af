package api

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/abhisek/quizgen/internal/export"
	"github.com/abhisek/quizgen/internal/questiongen"
	"github.com/abhisek/quizgen/internal/quiz"
)

// detail writes the {"detail": msg} error body.
func detail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"detail": msg})
}

// errorHandler renders errors that escape handlers, including fiber's
// own (404 route, body too large) and recovered panics.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return detail(c, fe.Code, fe.Message)
	}
	log.Printf("request %v: unhandled error: %v", c.Locals("requestid"), err)
	return detail(c, fiber.StatusInternalServerError, "Internal server error")
}

// statusFor maps a domain error to its HTTP status and user-facing
// message. Model and store causes are logged, not returned.
func statusFor(c *fiber.Ctx, err error) (int, string) {
	var ve *quiz.ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest, ve.Message
	}

	var ge *questiongen.GenerationError
	if errors.As(err, &ge) {
		log.Printf("request %v: %v", c.Locals("requestid"), err)
		if ge.Reason == questiongen.ReasonModelUnavailable {
			return fiber.StatusBadGateway, "The question generation model is unavailable. Please try again."
		}
		return fiber.StatusBadGateway, "The model returned an unexpected response. Please try again."
	}

	var ee *export.ExportError
	if errors.As(err, &ee) {
		switch ee.Reason {
		case export.ReasonEmpty:
			return fiber.StatusNotFound, "No questions found to export"
		case export.ReasonUnsupportedFormat, export.ReasonInvalidLimit:
			return fiber.StatusBadRequest, ee.Error()
		case export.ReasonStoreUnavailable:
			log.Printf("request %v: %v", c.Locals("requestid"), err)
			return fiber.StatusServiceUnavailable, "Question store is unavailable"
		}
		log.Printf("request %v: %v", c.Locals("requestid"), err)
		return fiber.StatusInternalServerError, "Export failed"
	}

	log.Printf("request %v: %v", c.Locals("requestid"), err)
	return fiber.StatusInternalServerError, "Internal server error"
}

func fail(c *fiber.Ctx, err error) error {
	status, msg := statusFor(c, err)
	return detail(c, status, msg)
}
