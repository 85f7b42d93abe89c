package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// spamPaths are request path fragments probed by bots and vulnerability
// scanners. Requests touching them get an empty 404 before any handler
// runs.
var spamPaths = []string{
	"wp-admin", "wp-login", "wp-content", "wp-includes", "wp-config", "wp-json", "wordpress",
	"xmlrpc.php", "wp-cron.php", "wp-trackback.php", "phpmyadmin", "pma", "adminer",
	"mysql", "admin.php", "index.php", "config.php", "install.php", "setup.php", "administrator",
	"cpanel", "webmail", "panel", "manager", "control", "backend", ".env", ".git", ".svn",
	".htaccess", ".htpasswd", "web.config", "composer.json", "package.json", "cgi-bin", "cgi",
	"drupal", "sites/default", "user/login", "node/", "joomla",
	"crossdomain.xml", "clientaccesspolicy.xml",
	"backup", "backups", "dump", ".bak", ".old", ".tmp",
	"login.php", "user.php", "account.php", "auth.php",
	"filemanager", "file-manager", "typo3", "concrete5", "modx", "prestashop",
}

// SpamFilterMiddleware blocks well-known scanner paths with an empty 404
func SpamFilterMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := strings.ToLower(c.Path())
		for _, spam := range spamPaths {
			if strings.Contains(path, spam) {
				return c.Status(fiber.StatusNotFound).SendString("")
			}
		}
		return c.Next()
	}
}
