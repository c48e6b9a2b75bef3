package policyconsole

import "html/template"

var pages = template.Must(template.New("console").Parse(`
{{define "menu"}}
<nav id="sidebar" class="sidebar">
  <ul class="sidebar-nav">
    <li class="nav-item">
      <a id="policyToggle" class="nav-link{{if not .MenuOpen}} collapsed{{end}}" data-bs-target="#tables-nav" href="#">Policy</a>
      <ul id="tables-nav" class="nav-content collapse"{{if not .MenuOpen}} style="display:none"{{end}}>
        {{if not .HideLinks}}
        <li><a href="AdminCreatePolicy.aspx">Create Policy</a></li>
        <li><a href="AdminAuthorizePolicy.aspx">Authorize Policy</a></li>
        {{end}}
      </ul>
    </li>
  </ul>
</nav>
{{end}}

{{define "select"}}
<select id="{{.ID}}" name="{{.ID}}"{{if .PostBack}} onchange="javascript:setTimeout('__doPostBack(\'{{.ID}}\',\'\')', 0)"{{end}} class="form-select">
  {{range .Options}}<option value="{{.Value}}"{{if .Selected}} selected="selected"{{end}}>{{.Label}}</option>
  {{end}}
</select>
{{end}}

{{define "login"}}
<html><head><title>InsurEdge - Login</title></head><body>
<form id="form1" method="post" action="LoginPage.aspx">
  <input type="text" id="txtUsername" name="txtUsername" value="">
  <input type="password" id="txtPassword" name="txtPassword" value="">
  <input type="submit" id="BtnLogin" name="BtnLogin" value="Login">
  {{if .Error}}<span id="lblError" class="text-danger">{{.Error}}</span>{{end}}
</form>
</body></html>
{{end}}

{{define "dashboard"}}
<html><head><title>InsurEdge - Dashboard</title></head><body>
<form id="form1" method="post">
{{template "menu" .Menu}}
<main id="main"><h1>Dashboard</h1><p>Welcome, {{.User}}</p></main>
</form>
</body></html>
{{end}}

{{define "authorize"}}
<html><head><title>InsurEdge - Authorize Policy</title></head><body>
<form id="form1" method="post">
{{template "menu" .Menu}}
<main id="main">
  <div class="loading" style="display:none">Loading...</div>
  <div class="filters">
    {{template "select" .Main}}
    {{template "select" .Sub}}
    {{template "select" .Status}}
    <input type="submit" id="ContentPlaceHolder_Admin_btnSearch" name="ContentPlaceHolder_Admin_btnSearch" value="Search" class="btn btn-primary">
    <input type="submit" id="ContentPlaceHolder_Admin_btnReset" name="ContentPlaceHolder_Admin_btnReset" value="Reset" class="btn btn-secondary">
  </div>
  <table id="ContentPlaceHolder_Admin_gvPolicies" class="table">
    <tbody>
      <tr><th>Policy ID</th><th>Main Category</th><th>Sub Category</th><th>Policy Name</th><th>Status</th></tr>
      {{range .Rows}}<tr><td>{{.ID}}</td><td>{{.MainCategory}}</td><td>{{.SubCategory}}</td><td>{{.Name}}</td><td>{{.Status}}</td></tr>
      {{else}}<tr><td colspan="5">No policies found.</td></tr>
      {{end}}
      {{if gt (len .Pages) 1}}
      <tr class="pagination-container"><td colspan="5"><table><tbody><tr>
        {{range .Pages}}<td>{{if .Current}}<span>{{.N}}</span>{{else}}<a href="{{.Href}}"{{if $.ObstructPager}} data-obstructed="true"{{end}}>{{.N}}</a>{{end}}</td>{{end}}
      </tr></tbody></table></td></tr>
      {{end}}
    </tbody>
  </table>
</main>
</form>
</body></html>
{{end}}

{{define "create"}}
<html><head><title>InsurEdge - Create Policy</title></head><body>
<form id="form1" method="post">
{{template "menu" .Menu}}
<main id="main">
  {{template "select" .Main}}
  {{template "select" .Sub}}
  <label for="ContentPlaceHolder_Admin_txtPolicyName">Policy Name</label>
  <input type="text" id="ContentPlaceHolder_Admin_txtPolicyName" name="ContentPlaceHolder_Admin_txtPolicyName" value="{{.PolicyName}}" placeholder="Enter policy name">
  <label for="ContentPlaceHolder_Admin_txtSumAssured">Sum Assured</label>
  <input type="number" id="ContentPlaceHolder_Admin_txtSumAssured" name="ContentPlaceHolder_Admin_txtSumAssured" value="{{.SumAssured}}" placeholder="Enter sum assured">
  <label for="ContentPlaceHolder_Admin_txtPremium">Premium</label>
  <input type="number" id="ContentPlaceHolder_Admin_txtPremium" name="ContentPlaceHolder_Admin_txtPremium" value="{{.Premium}}" placeholder="Enter premium">
  <label for="ContentPlaceHolder_Admin_sliderTenure">Tenure</label>
  <input type="range" id="ContentPlaceHolder_Admin_sliderTenure" name="ContentPlaceHolder_Admin_sliderTenure" min="0" max="{{.MaxTenure}}" value="{{.Tenure}}" onchange="javascript:setTimeout('__doPostBack(\'ContentPlaceHolder_Admin_sliderTenure\',\'\')', 0)">
  <span id="tenureValue">{{.Tenure}}</span> years
  {{if .Error}}<div class="invalid-feedback" style="display:block">{{.Error}}</div>{{end}}
  <input type="button" id="ContentPlaceHolder_Admin_btnCreate" name="ContentPlaceHolder_Admin_btnCreate" value="Create" onclick="openReview()">
  <input type="button" id="ContentPlaceHolder_Admin_btnReset" name="ContentPlaceHolder_Admin_btnReset" value="Reset" onclick="resetForm()">
  {{with .Hidden}}
  <input type="hidden" id="ContentPlaceHolder_Admin_hiddenMainCategory" name="ContentPlaceHolder_Admin_hiddenMainCategory" value="{{.MainCategory}}">
  <input type="hidden" id="ContentPlaceHolder_Admin_hiddenSubCategory" name="ContentPlaceHolder_Admin_hiddenSubCategory" value="{{.SubCategory}}">
  <input type="hidden" id="ContentPlaceHolder_Admin_hiddenPolicyName" name="ContentPlaceHolder_Admin_hiddenPolicyName" value="{{.Name}}">
  <input type="hidden" id="ContentPlaceHolder_Admin_hiddenSumAssured" name="ContentPlaceHolder_Admin_hiddenSumAssured" value="{{.SumAssured}}">
  <input type="hidden" id="ContentPlaceHolder_Admin_hiddenPremium" name="ContentPlaceHolder_Admin_hiddenPremium" value="{{.Premium}}">
  <input type="hidden" id="ContentPlaceHolder_Admin_hiddenTenure" name="ContentPlaceHolder_Admin_hiddenTenure" value="{{.Tenure}}">
  {{end}}
  <div id="policyReviewModal" class="modal"{{if not .Review}} style="display:none"{{else}} style="display:block"{{end}}>
    <div class="modal-body">
      <iframe id="policyReviewFrame" title="Policy review"{{if .Review}} src="{{.ReviewSrc}}"{{end}}></iframe>
    </div>
    <button type="button" id="btnReviewOk" onclick="__doPostBack('ContentPlaceHolder_Admin_btnConfirmInsert','')">OK</button>
  </div>
  {{if .Saved}}<div id="lblMessage" class="alert alert-success">{{.Saved}}</div>{{end}}
</main>
</form>
</body></html>
{{end}}
`))
