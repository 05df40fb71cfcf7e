package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger-api/pkg/logger"
)

// Cabeceras aceptadas para la clave.
const (
	HeaderKey       = "Idempotency-Key"
	HeaderKeyLegacy = "X-Idempotency-Key"
	HeaderReplayed  = "Idempotent-Replayed"
	maxKeyLength    = 255
)

// KeyFunc arma la clave final a partir del contexto y la clave del cliente.
type KeyFunc func(c *fiber.Ctx, clientKey string) string

// KeyByUser separa las claves por usuario, método y ruta.
func KeyByUser(userID func(c *fiber.Ctx) string) KeyFunc {
	return func(c *fiber.Ctx, clientKey string) string {
		return fmt.Sprintf("idem:%s:%s:%s:%s", userID(c), c.Method(), c.Path(), clientKey)
	}
}

// Middleware protege POST/PUT/PATCH: la primera petición con una clave se ejecuta y su respuesta (< 500)
// se guarda; los reintentos con el mismo cuerpo reciben esa respuesta sin volver a ejecutar el handler.
// Sin cabecera la petición pasa tal cual.
func Middleware(backend Backend, keyFn KeyFunc, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		default:
			return c.Next()
		}
		clientKey := c.Get(HeaderKey)
		if clientKey == "" {
			clientKey = c.Get(HeaderKeyLegacy)
		}
		if clientKey == "" {
			return c.Next()
		}
		if len(clientKey) > maxKeyLength {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "INVALID_IDEMPOTENCY_KEY", "message": "Idempotency-Key demasiado larga"})
		}

		key := keyFn(c, clientKey)
		sum := sha256.Sum256(c.Body())
		fingerprint := hex.EncodeToString(sum[:])

		ctx := c.UserContext()
		stored, err := backend.Acquire(ctx, key, fingerprint)
		switch {
		case errors.Is(err, ErrInProgress):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"code": "IDEMPOTENCY_IN_PROGRESS", "message": "una petición con la misma Idempotency-Key está en curso"})
		case errors.Is(err, ErrFingerprintMismatch):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"code": "IDEMPOTENCY_KEY_REUSED", "message": "la Idempotency-Key ya se usó con otro cuerpo"})
		case err != nil:
			// Sin almacén disponible la petición sigue sin protección.
			log.Warn().Err(err).Str("key", key).Msg("idempotencia no disponible")
			return c.Next()
		}
		if stored != nil {
			c.Set(HeaderReplayed, "true")
			if stored.ContentType != "" {
				c.Set(fiber.HeaderContentType, stored.ContentType)
			}
			return c.Status(stored.StatusCode).Send(stored.Body)
		}

		handlerErr := c.Next()
		status := c.Response().StatusCode()
		if handlerErr != nil || status >= fiber.StatusInternalServerError {
			if err := backend.Release(ctx, key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar la clave de idempotencia")
			}
			return handlerErr
		}
		resp := Response{
			Fingerprint: fingerprint,
			StatusCode:  status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := backend.Complete(ctx, key, resp); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar la respuesta idempotente")
		}
		return nil
	}
}
