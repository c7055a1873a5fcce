package e2e

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// E2ETestSuite provides a test suite for end-to-end tests
type E2ETestSuite struct {
	suite.Suite
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	expect  playwright.PlaywrightAssertions
}

// SetupSuite runs once before all tests
func (suite *E2ETestSuite) SetupSuite() {
	pw, err := playwright.Run()
	require.NoError(suite.T(), err, "could not launch playwright")
	suite.pw = pw

	browser, err := pw.Chromium.Launch()
	require.NoError(suite.T(), err, "could not launch chromium")
	suite.browser = browser

	suite.expect = playwright.NewPlaywrightAssertions()
}

// TearDownSuite runs once after all tests
func (suite *E2ETestSuite) TearDownSuite() {
	if suite.browser != nil {
		suite.browser.Close()
	}
	if suite.pw != nil {
		suite.pw.Stop()
	}
}

// SetupTest runs before each test
func (suite *E2ETestSuite) SetupTest() {
	page, err := suite.browser.NewPage()
	require.NoError(suite.T(), err, "could not create page")
	suite.page = page

	_, err = suite.page.Goto(appURL)
	require.NoError(suite.T(), err, "could not navigate to app")
}

// TearDownTest runs after each test
func (suite *E2ETestSuite) TearDownTest() {
	if suite.page != nil {
		suite.page.Close()
	}
}

func (suite *E2ETestSuite) register(username, email string) {
	// Wait for registration form
	err := suite.expect.Locator(suite.page.Locator(".user-form")).ToBeVisible()
	require.NoError(suite.T(), err, "registration form not visible")

	err = suite.page.Locator("input[name=username]").Fill(username)
	require.NoError(suite.T(), err, "failed to fill username")

	err = suite.page.Locator("input[name=email]").Fill(email)
	require.NoError(suite.T(), err, "failed to fill email")

	err = suite.page.Locator(".user-form button.submit").Click()
	require.NoError(suite.T(), err, "failed to submit registration")

	// Registration lands on the expense form
	err = suite.expect.Locator(suite.page.Locator("#expense-form")).ToBeVisible()
	require.NoError(suite.T(), err, "did not redirect to expense form after registration")
}

func (suite *E2ETestSuite) TestCompleteUserFlow() {
	suite.register("e2euser", "e2e@example.com")

	err := suite.page.Locator("input[name=title]").Fill("Coffee")
	require.NoError(suite.T(), err, "failed to fill title")

	err = suite.page.Locator("input[name=amount]").Fill("4.50")
	require.NoError(suite.T(), err, "failed to fill amount")

	err = suite.page.Locator("input[name=description]").Fill("Flat white")
	require.NoError(suite.T(), err, "failed to fill description")

	err = suite.page.Locator("input[name=category]").Fill("Food")
	require.NoError(suite.T(), err, "failed to fill category")

	err = suite.page.Locator("#expense-form button.submit").Click()
	require.NoError(suite.T(), err, "failed to submit expense")

	// Confirmation offers the history
	err = suite.expect.Locator(suite.page.Locator(".alert.success")).ToHaveText("Expense saved successfully.")
	require.NoError(suite.T(), err, "confirmation message missing")

	err = suite.page.Locator("a.view-history").Click()
	require.NoError(suite.T(), err, "failed to open history")

	err = suite.expect.Locator(suite.page.Locator(".expense-item")).ToHaveCount(1)
	require.NoError(suite.T(), err, "expense item count mismatch")

	item := suite.page.Locator(".expense-item").First()
	err = suite.expect.Locator(item.Locator(".expense-title")).ToHaveText("Coffee")
	require.NoError(suite.T(), err, "title mismatch")

	err = suite.expect.Locator(item.Locator(".expense-amount")).ToContainText("4.50")
	require.NoError(suite.T(), err, "amount mismatch")

	err = suite.expect.Locator(suite.page.Locator(".summary .total")).ToHaveText("4.50")
	require.NoError(suite.T(), err, "total mismatch")
}

func (suite *E2ETestSuite) TestDuplicateRegistration() {
	suite.register("dupuser", "dup@example.com")

	_, err := suite.page.Goto(appURL)
	require.NoError(suite.T(), err, "could not navigate to app")

	err = suite.page.Locator("input[name=username]").Fill("dupuser")
	require.NoError(suite.T(), err, "failed to fill username")
	err = suite.page.Locator("input[name=email]").Fill("other@example.com")
	require.NoError(suite.T(), err, "failed to fill email")
	err = suite.page.Locator(".user-form button.submit").Click()
	require.NoError(suite.T(), err, "failed to submit registration")

	err = suite.expect.Locator(suite.page.Locator(".home-screen .alert.error")).ToContainText("already in use")
	require.NoError(suite.T(), err, "duplicate registration not reported")
}

// TestE2ESuite runs the e2e test suite
func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
